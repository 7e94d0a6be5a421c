package auth

import (
	"sync"

	"github.com/google/uuid"
)

// InMemoryUserRepository keeps accounts in a map keyed by email. It
// backs the package tests so they can run without Postgres.
type InMemoryUserRepository struct {
	mu      sync.RWMutex
	byEmail map[string]*User
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{byEmail: make(map[string]*User)}
}

func (r *InMemoryUserRepository) Save(user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	r.byEmail[user.Email] = user
	return nil
}

func (r *InMemoryUserRepository) ExistsByEmail(email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byEmail[email]
	return ok, nil
}

func (r *InMemoryUserRepository) FindByEmail(email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (r *InMemoryUserRepository) UpdateRole(userID, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.byEmail {
		if u.ID == userID {
			u.Role = role
			return nil
		}
	}
	return ErrUserNotFound
}
