package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher wraps bcrypt hashing and verification.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher uses bcrypt.DefaultCost when cost is zero. Tests pass
// bcrypt.MinCost.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

func (h *PasswordHasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Matches reports whether plain is the password behind hashed. Errors other
// than a mismatch (e.g. a corrupt hash) are returned.
func (h *PasswordHasher) Matches(plain, hashed string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}
