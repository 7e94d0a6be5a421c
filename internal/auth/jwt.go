package auth

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Tokens are short-lived. Clients log in again instead of refreshing.
const tokenTTL = 24 * time.Hour

var ErrInvalidToken = errors.New("invalid token")

// Claims is the payload of an access token. The role rides in the token
// so the middleware can authorize a request without a user lookup.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

func jwtSecret() ([]byte, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, errors.New("JWT_SECRET not set")
	}
	return []byte(secret), nil
}

// GenerateToken signs an access token for the given account.
func GenerateToken(userID, email, role string) (string, error) {
	if userID == "" {
		return "", errors.New("refusing to issue a token without a user id")
	}

	secret, err := jwtSecret()
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := &Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ValidateToken verifies signature and expiry and returns the user id,
// email and role the token was issued for.
func ValidateToken(tokenString string) (string, string, string, error) {
	secret, err := jwtSecret()
	if err != nil {
		return "", "", "", err
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return "", "", "", ErrInvalidToken
	}

	return claims.Subject, claims.Email, claims.Role, nil
}
