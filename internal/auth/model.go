package auth

// User is an account that holds one of the three roles defined in
// roles.go. Password always carries a bcrypt hash, never plain text.
type User struct {
	ID       string
	Name     string
	Email    string
	Password string
	Role     string
}
