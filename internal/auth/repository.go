package auth

import "errors"

var ErrUserNotFound = errors.New("user not found")

// UserRepository is the persistence boundary for accounts. The service
// only talks to storage through it, so tests can swap in the in-memory
// implementation.
type UserRepository interface {
	Save(user *User) error
	ExistsByEmail(email string) (bool, error)
	FindByEmail(email string) (*User, error)
	UpdateRole(userID, role string) error
}
