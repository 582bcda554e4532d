package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Credential errors surfaced to the login and password-change handlers.
var (
	ErrPasswordTooShort = errors.New("password must be at least 8 characters long")
	ErrPasswordMismatch = errors.New("password does not match the stored hash")
)

const (
	bcryptCost        = 12
	minPasswordLength = 8
)

// HashPassword derives the bcrypt hash stored on model.User. Passwords
// shorter than eight characters are refused before any hashing work.
func HashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares a stored hash against a login attempt. A wrong
// password yields ErrPasswordMismatch; any other error means the stored
// value is not a valid bcrypt hash and comes back verbatim.
func VerifyPassword(storedHash, attempt string) error {
	err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(attempt))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return err
}
