package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher derives and verifies one-way password hashes.
type Hasher struct {
	cost int
}

// NewHasher constructs a Hasher with the provided bcrypt cost. A cost
// outside bcrypt's supported range falls back to the library default.
func NewHasher(cost int) Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return Hasher{cost: cost}
}

// Hash returns the bcrypt hash of the provided raw password.
func (h Hasher) Hash(raw string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(raw), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify compares a stored hash against a raw password. A mismatch is
// reported as ErrInvalidCredentials; the raw password is never retained.
func (h Hasher) Verify(hash, raw string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
