package cryptox

import (
	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used for newly hashed passwords.
const DefaultCost = 10

// HashPassword returns the bcrypt hash of a plaintext password.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword compares a stored bcrypt hash against a candidate password.
// The comparison is constant-time inside bcrypt itself.
func VerifyPassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
