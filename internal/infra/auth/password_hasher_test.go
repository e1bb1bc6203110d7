package auth

import (
	"strings"
	"testing"

	"postly/config"
	domainerrors "postly/internal/domain/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestHasherConfig(algorithm string) *config.Config {
	return &config.Config{
		Auth: &config.AuthConfig{
			HashAlgorithm: algorithm,
			BcryptCost:    bcrypt.MinCost,
		},
	}
}

func TestPasswordHasher_Bcrypt_HashAndCheck(t *testing.T) {
	hasher, err := NewPasswordHasher(newTestHasherConfig(config.HashAlgorithmBcrypt))
	require.NoError(t, err)

	digest, err := hasher.Hash("p1")
	require.NoError(t, err)

	assert.NotEqual(t, "p1", digest)
	assert.True(t, strings.HasPrefix(digest, "$2a$"))
	assert.True(t, hasher.Check("p1", digest))
	assert.False(t, hasher.Check("p2", digest))
	assert.False(t, hasher.Check("", digest))
	assert.False(t, hasher.NeedsRehash(digest))
}

func TestPasswordHasher_BcryptRejectsOverlongPasswords(t *testing.T) {
	hasher, err := NewPasswordHasher(newTestHasherConfig(config.HashAlgorithmBcrypt))
	require.NoError(t, err)

	// 40 characters, 80 bytes.
	_, err = hasher.Hash(strings.Repeat("é", 40))
	require.ErrorIs(t, err, domainerrors.ErrValidationFailed)

	digest, err := hasher.Hash(strings.Repeat("é", 36))
	require.NoError(t, err)
	assert.True(t, hasher.Check(strings.Repeat("é", 36), digest))
}

func TestPasswordHasher_SaltsEveryDigest(t *testing.T) {
	hasher, err := NewPasswordHasher(newTestHasherConfig(config.HashAlgorithmBcrypt))
	require.NoError(t, err)

	first, err := hasher.Hash("same-password")
	require.NoError(t, err)
	second, err := hasher.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestPasswordHasher_Argon2id_HashAndCheck(t *testing.T) {
	hasher, err := NewPasswordHasher(newTestHasherConfig(config.HashAlgorithmArgon2id))
	require.NoError(t, err)

	digest, err := hasher.Hash("StrongPass123!")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(digest, "$argon2id$v=19$m=65536,t=3,p=4$"))
	assert.True(t, hasher.Check("StrongPass123!", digest))
	assert.False(t, hasher.Check("WrongPass123!", digest))
	assert.False(t, hasher.NeedsRehash(digest))
}

func TestPasswordHasher_VerifiesDigestsOfOtherAlgorithm(t *testing.T) {
	argonHasher, err := NewPasswordHasher(newTestHasherConfig(config.HashAlgorithmArgon2id))
	require.NoError(t, err)
	bcryptHasher, err := NewPasswordHasher(newTestHasherConfig(config.HashAlgorithmBcrypt))
	require.NoError(t, err)

	legacy, err := argonHasher.Hash("migrate-me")
	require.NoError(t, err)

	assert.True(t, bcryptHasher.Check("migrate-me", legacy))
	assert.True(t, bcryptHasher.NeedsRehash(legacy))

	current, err := bcryptHasher.Hash("migrate-me")
	require.NoError(t, err)
	assert.True(t, argonHasher.Check("migrate-me", current))
	assert.True(t, argonHasher.NeedsRehash(current))
}

func TestPasswordHasher_BcryptCostChangeNeedsRehash(t *testing.T) {
	hasher, err := NewPasswordHasher(newTestHasherConfig(config.HashAlgorithmBcrypt))
	require.NoError(t, err)

	digest, err := bcrypt.GenerateFromPassword([]byte("p1"), bcrypt.MinCost+1)
	require.NoError(t, err)

	assert.True(t, hasher.Check("p1", string(digest)))
	assert.True(t, hasher.NeedsRehash(string(digest)))
}

func TestPasswordHasher_RejectsMalformedDigests(t *testing.T) {
	hasher, err := NewPasswordHasher(newTestHasherConfig(config.HashAlgorithmBcrypt))
	require.NoError(t, err)

	malformed := []string{
		"",
		"plaintext",
		"$argon2id$v=19$m=65536,t=3,p=4$not-base64!$x",
		"$argon2id$v=18$m=65536,t=3,p=4$c2FsdA$aGFzaA",
		"$argon2id$broken",
		"$2a$12$short",
		"$argon2id$v=19$m=65536,t=3,p=4$c2FsdHNhbHQ$",
		"$argon2id$v=19$m=65536,t=3,p=4$$aGFzaGhhc2g",
		"$argon2id$v=19$m=65536,t=0,p=4$c2FsdHNhbHQ$aGFzaGhhc2g",
		"$argon2id$v=19$m=65536,t=3,p=0$c2FsdHNhbHQ$aGFzaGhhc2g",
		"$argon2id$v=19$m=16,t=3,p=4$c2FsdHNhbHQ$aGFzaGhhc2g",
		"$argon2id$v=19$m=4294967295,t=3,p=4$c2FsdHNhbHQ$aGFzaGhhc2g",
		"$argon2id$v=19$m=65536,t=4000000000,p=4$c2FsdHNhbHQ$aGFzaGhhc2g",
		"$argon2id$v=19$m=65536,t=3,p=300$c2FsdHNhbHQ$aGFzaGhhc2g",
	}

	for _, digest := range malformed {
		assert.NotPanics(t, func() { hasher.Check("anything", digest) }, "digest %q", digest)
		assert.False(t, hasher.Check("anything", digest), "digest %q must not verify", digest)
		assert.True(t, hasher.NeedsRehash(digest), "digest %q must need rehash", digest)
	}
}

func TestNewPasswordHasher_UnknownAlgorithm(t *testing.T) {
	hasher, err := NewPasswordHasher(newTestHasherConfig("md5"))
	assert.Error(t, err)
	assert.Nil(t, hasher)
}

func TestNewPasswordHasher_DefaultsToBcrypt(t *testing.T) {
	hasher, err := NewPasswordHasher(&config.Config{})
	require.NoError(t, err)

	digest, err := hasher.Hash("p1")
	require.NoError(t, err)
	assert.Equal(t, config.HashAlgorithmBcrypt, algorithmOf(digest))
}
