package cryptox

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor applied to new hashes.
const PasswordCost = 10

var ErrPasswordMismatch = errors.New("password does not match")

// HashPassword returns a bcrypt hash ($2a$10$...) with an embedded salt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword compares a plaintext password against a bcrypt hash.
// Returns ErrPasswordMismatch when they differ and a wrapped error when the
// stored hash cannot be parsed.
func VerifyPassword(password, encodedHash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrPasswordMismatch
	default:
		return fmt.Errorf("invalid password hash: %w", err)
	}
}

// DummyHash is a valid bcrypt hash of a random string. Comparing against it
// when a user does not exist keeps login timing close to the wrong-password
// path.
var DummyHash = mustDummyHash()

func mustDummyHash() string {
	hash, err := bcrypt.GenerateFromPassword([]byte(MustGenerateToken(TokenSize128)), PasswordCost)
	if err != nil {
		panic(fmt.Sprintf("cryptox: failed to build dummy hash: %v", err))
	}
	return string(hash)
}
