package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already exists")
	ErrUnknownRole        = errors.New("unknown role")
	ErrMissingFields      = errors.New("missing required fields")
)

// Service implements registration, login and role management on top of
// a UserRepository.
type Service struct {
	repo UserRepository
}

func NewService(repo UserRepository) *Service {
	return &Service{repo: repo}
}

// Register creates an account. New accounts always start as VIEWER.
// Promotion is an admin action.
func (s *Service) Register(name, email, password string) (*User, error) {
	if name == "" || email == "" || password == "" {
		return nil, ErrMissingFields
	}

	exists, err := s.repo.ExistsByEmail(email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &User{
		Name:     name,
		Email:    email,
		Password: string(hash),
		Role:     RoleViewer,
	}
	if err := s.repo.Save(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks credentials and returns the account. Unknown emails and
// wrong passwords fail identically, so callers cannot probe which
// addresses have accounts.
func (s *Service) Login(email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// UpdateUserRole sets a user's role. Admin-only, enforced at the route.
func (s *Service) UpdateUserRole(userID, role string) error {
	if !ValidRole(role) {
		return ErrUnknownRole
	}
	return s.repo.UpdateRole(userID, role)
}
