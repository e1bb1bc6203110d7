package auth

import (
	"strings"

	"postly/config"
	"postly/internal/domain/service"
	"postly/internal/errors"
)

// passwordHasher hashes with the configured algorithm and verifies digests
// of every supported algorithm by their prefix.
type passwordHasher struct {
	preferred string
	bcrypt    *bcryptHasher
	argon2    *argon2Hasher
}

// NewPasswordHasher is the constructor for the PasswordHasher, injected by Fx.
func NewPasswordHasher(cfg *config.Config) (service.PasswordHasher, error) {
	algorithm := config.HashAlgorithmBcrypt
	cost := 0
	if cfg != nil && cfg.Auth != nil {
		if cfg.Auth.HashAlgorithm != "" {
			algorithm = strings.ToLower(cfg.Auth.HashAlgorithm)
		}
		cost = cfg.Auth.BcryptCost
	}

	switch algorithm {
	case config.HashAlgorithmBcrypt, config.HashAlgorithmArgon2id:
	default:
		return nil, errors.Errorf("unsupported hash algorithm: %s", algorithm)
	}

	return &passwordHasher{
		preferred: algorithm,
		bcrypt:    newBcryptHasher(cost),
		argon2:    newArgon2Hasher(defaultArgon2Params),
	}, nil
}

func (h *passwordHasher) Hash(password string) (string, error) {
	if h.preferred == config.HashAlgorithmArgon2id {
		return h.argon2.Hash(password)
	}

	return h.bcrypt.Hash(password)
}

func (h *passwordHasher) Check(password, digest string) bool {
	switch algorithmOf(digest) {
	case config.HashAlgorithmBcrypt:
		return h.bcrypt.Check(password, digest)
	case config.HashAlgorithmArgon2id:
		return h.argon2.Check(password, digest)
	default:
		return false
	}
}

func (h *passwordHasher) NeedsRehash(digest string) bool {
	algorithm := algorithmOf(digest)
	if algorithm != h.preferred {
		return true
	}

	if algorithm == config.HashAlgorithmArgon2id {
		return h.argon2.NeedsRehash(digest)
	}

	return h.bcrypt.NeedsRehash(digest)
}

func algorithmOf(digest string) string {
	switch {
	case strings.HasPrefix(digest, argon2idPrefix):
		return config.HashAlgorithmArgon2id
	case isBcryptDigest(digest):
		return config.HashAlgorithmBcrypt
	default:
		return ""
	}
}
