package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const (
	// MinPasswordLen is enforced at hash time as a backstop behind
	// request validation.
	MinPasswordLen = 8

	// DefaultCost is the bcrypt work factor used when the configured
	// one is out of range.
	DefaultCost = 12
)

var ErrPasswordTooShort = errors.New("password is too short")

// PasswordHasher hashes and verifies login credentials.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type bcryptHasher struct {
	cost int
}

// NewBcryptHasher builds a bcrypt-backed hasher, clamping out-of-range
// costs to DefaultCost.
func NewBcryptHasher(cost int) PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &bcryptHasher{cost: cost}
}

func (h *bcryptHasher) Hash(password string) (string, error) {
	if len(password) < MinPasswordLen {
		return "", ErrPasswordTooShort
	}
	out, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (h *bcryptHasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
