package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Config holds the bcrypt work factor.
type Config struct {
	Cost int
}

// Hasher hashes and verifies passwords. Instances are immutable and safe
// for concurrent use.
type Hasher struct {
	cost int
}

// NewHasher validates cfg and returns a Hasher. A zero cost falls back to
// the bcrypt default.
func NewHasher(cfg Config) (*Hasher, error) {
	cost := cfg.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, errors.New("bcrypt cost out of range")
	}
	return &Hasher{cost: cost}, nil
}

// Hash derives a salted one-way hash of password. Failures are fatal to the
// calling operation and surface as an error.
func (h *Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether password produced encodedHash. It never returns an
// error: a malformed stored hash, like a wrong password, verifies as false.
func (h *Hasher) Verify(password, encodedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password)) == nil
}
