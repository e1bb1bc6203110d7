// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"strings"

	domainerrors "postly/internal/domain/errors"
	"postly/internal/errors"

	"golang.org/x/crypto/bcrypt"
)

var bcryptPrefixes = []string{"$2a$", "$2b$", "$2y$"}

// bcryptHasher hashes with bcrypt. The digest embeds version, cost and salt.
type bcryptHasher struct {
	cost int
}

func newBcryptHasher(cost int) *bcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	return &bcryptHasher{cost: cost}
}

func (h *bcryptHasher) Hash(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", domainerrors.ErrValidationFailed.WithDetails("password: must be at most 72 bytes")
	}
	if err != nil {
		return "", errors.Wrap(err, "bcrypt hash")
	}

	return string(digest), nil
}

func (h *bcryptHasher) Check(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}

// NeedsRehash reports a cost different from the configured one.
func (h *bcryptHasher) NeedsRehash(digest string) bool {
	cost, err := bcrypt.Cost([]byte(digest))
	if err != nil {
		return true
	}

	return cost != h.cost
}

func isBcryptDigest(digest string) bool {
	for _, prefix := range bcryptPrefixes {
		if strings.HasPrefix(digest, prefix) {
			return true
		}
	}

	return false
}
