package identity

import "golang.org/x/crypto/bcrypt"

// Hasher abstracts password hashing so tests can swap in a cheap
// implementation.
type Hasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// BcryptHasher hashes passwords with bcrypt. Cost is configurable so the
// security/performance trade-off can be tuned per environment.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a bcrypt hasher, falling back to the library
// default cost for non-positive values.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}

	return &BcryptHasher{cost: cost}
}

// Hash implements Hasher.
func (h *BcryptHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}

	return string(hashed), nil
}

// Compare implements Hasher.
func (h *BcryptHasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
