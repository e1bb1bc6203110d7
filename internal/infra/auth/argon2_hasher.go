package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"postly/internal/errors"

	"golang.org/x/crypto/argon2"
)

const argon2idPrefix = "$argon2id$"

// Bounds on parameters read back from stored digests. IDKey panics on zero
// time, threads or key length and allocates memory KiB up front.
const (
	maxArgon2Time   = 16
	maxArgon2Memory = 1 << 20 // KiB
	maxArgon2Bytes  = 128     // salt and key
)

// argon2Params are the tunables encoded into every argon2id digest.
type argon2Params struct {
	time    uint32
	memory  uint32 // KiB
	threads uint8
	keyLen  uint32
	saltLen uint32
}

var defaultArgon2Params = argon2Params{
	time:    3,
	memory:  64 * 1024,
	threads: 4,
	keyLen:  32,
	saltLen: 16,
}

// argon2Hasher produces PHC formatted digests:
// $argon2id$v=19$m=65536,t=3,p=4$<salt>$<hash>
type argon2Hasher struct {
	params argon2Params
}

func newArgon2Hasher(params argon2Params) *argon2Hasher {
	return &argon2Hasher{params: params}
}

func (h *argon2Hasher) Hash(password string) (string, error) {
	salt := make([]byte, h.params.saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", errors.Wrap(err, "generate argon2 salt")
	}

	key := argon2.IDKey([]byte(password), salt, h.params.time, h.params.memory, h.params.threads, h.params.keyLen)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.memory,
		h.params.time,
		h.params.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (h *argon2Hasher) Check(password, digest string) bool {
	params, salt, key, err := decodeArgon2Digest(digest)
	if err != nil {
		return false
	}

	candidate := argon2.IDKey([]byte(password), salt, params.time, params.memory, params.threads, params.keyLen)

	return subtle.ConstantTimeCompare(key, candidate) == 1
}

// NeedsRehash reports digests produced with other parameters than the configured ones.
func (h *argon2Hasher) NeedsRehash(digest string) bool {
	params, _, _, err := decodeArgon2Digest(digest)
	if err != nil {
		return true
	}

	return params.time != h.params.time ||
		params.memory != h.params.memory ||
		params.threads != h.params.threads ||
		params.keyLen != h.params.keyLen
}

func decodeArgon2Digest(digest string) (argon2Params, []byte, []byte, error) {
	var params argon2Params

	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, hash
	parts := strings.Split(digest, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return params, nil, nil, errors.New("malformed argon2id digest")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return params, nil, nil, errors.Wrap(err, "argon2id version")
	}
	if version != argon2.Version {
		return params, nil, nil, errors.Errorf("unsupported argon2 version %d", version)
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.memory, &params.time, &params.threads); err != nil {
		return params, nil, nil, errors.Wrap(err, "argon2id parameters")
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return params, nil, nil, errors.Wrap(err, "argon2id salt")
	}

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return params, nil, nil, errors.Wrap(err, "argon2id hash")
	}

	params.saltLen = uint32(len(salt))
	params.keyLen = uint32(len(key))

	if err := params.validate(); err != nil {
		return params, nil, nil, err
	}

	return params, salt, key, nil
}

func (p argon2Params) validate() error {
	switch {
	case p.time < 1 || p.time > maxArgon2Time:
		return errors.Errorf("argon2id time %d out of range", p.time)
	case p.threads < 1:
		return errors.New("argon2id parallelism must be positive")
	case p.memory < 8*uint32(p.threads) || p.memory > maxArgon2Memory:
		return errors.Errorf("argon2id memory %d KiB out of range", p.memory)
	case p.saltLen == 0 || p.saltLen > maxArgon2Bytes:
		return errors.Errorf("argon2id salt length %d out of range", p.saltLen)
	case p.keyLen == 0 || p.keyLen > maxArgon2Bytes:
		return errors.Errorf("argon2id hash length %d out of range", p.keyLen)
	}

	return nil
}
