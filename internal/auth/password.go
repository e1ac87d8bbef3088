package auth

import (
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// PasswordVerifier checks a plaintext password against a stored hash.
type PasswordVerifier interface {
	Verify(plain, hash string) bool
}

// BcryptVerifier is the bcrypt backed PasswordVerifier.
type BcryptVerifier struct{}

// Verify reports whether plain matches hash. Malformed hashes never match.
func (BcryptVerifier) Verify(plain, hash string) bool {
	return ComparePassword(hash, plain) == nil
}

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

// placeholderHash hashes a random password so lookups that miss still pay
// for one comparison.
func placeholderHash(cost int) string {
	h, err := HashPassword(uuid.NewString(), cost)
	if err != nil {
		return ""
	}
	return h
}
