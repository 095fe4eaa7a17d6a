package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	algorithmID = "argon2id"

	minMemoryKB    uint32 = 8 * 1024
	minSaltLength  uint32 = 16
	minKeyLength   uint32 = 16
	minSecretBytes        = 8
)

// Params tunes the argon2id cost. Zero values are rejected; use
// [DefaultParams] unless a deployment has measured reasons not to.
type Params struct {
	Memory      uint32 // KiB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultParams returns the cost used when the caller does not override it.
func DefaultParams() Params {
	return Params{
		Memory:      64 * 1024,
		Time:        3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Hasher hashes and verifies secrets. It is immutable after construction and
// safe for concurrent use.
type Hasher struct {
	params Params
}

// NewHasher validates params and returns a ready Hasher.
func NewHasher(params Params) (*Hasher, error) {
	switch {
	case params.Memory < minMemoryKB:
		return nil, errors.New("password memory must be >= 8192 KiB")
	case params.Time < 1:
		return nil, errors.New("password time must be >= 1")
	case params.Parallelism < 1:
		return nil, errors.New("password parallelism must be >= 1")
	case params.SaltLength < minSaltLength:
		return nil, errors.New("password salt length must be >= 16")
	case params.KeyLength < minKeyLength:
		return nil, errors.New("password key length must be >= 16")
	}
	return &Hasher{params: params}, nil
}

// Hash derives an argon2id hash of secret under a fresh random salt and
// returns the PHC-encoded form.
func (h *Hasher) Hash(secret string) (string, error) {
	// Raw secret bytes exactly as provided; no Unicode normalization.
	if len(secret) < minSecretBytes {
		return "", errors.New("password must be at least 8 bytes")
	}

	salt := make([]byte, h.params.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}

	key := argon2.IDKey([]byte(secret), salt, h.params.Time, h.params.Memory, h.params.Parallelism, h.params.KeyLength)

	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithmID,
		argon2.Version,
		h.params.Memory,
		h.params.Time,
		h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether secret matches the PHC-encoded hash. The comparison
// is constant time; the cost parameters come from the stored hash so old
// hashes keep verifying after a cost upgrade.
func (h *Hasher) Verify(secret, encoded string) (bool, error) {
	memory, time, parallelism, salt, key, err := decode(encoded)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey([]byte(secret), salt, time, memory, parallelism, uint32(len(key)))
	return subtle.ConstantTimeCompare(computed, key) == 1, nil
}

func decode(encoded string) (memory, time uint32, parallelism uint8, salt, key []byte, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return 0, 0, 0, nil, nil, errors.New("invalid hash format")
	}
	if parts[1] != algorithmID {
		return 0, 0, 0, nil, nil, errors.New("unsupported hash algorithm")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return 0, 0, 0, nil, nil, errors.New("unsupported argon2 version")
	}

	var par uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &par); err != nil {
		return 0, 0, 0, nil, nil, errors.New("invalid hash parameters")
	}
	if memory < minMemoryKB || time < 1 || par < 1 || par > 255 {
		return 0, 0, 0, nil, nil, errors.New("invalid hash parameters")
	}
	parallelism = uint8(par)

	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || uint32(len(salt)) < minSaltLength {
		return 0, 0, 0, nil, nil, errors.New("invalid salt")
	}
	key, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || uint32(len(key)) < minKeyLength {
		return 0, 0, 0, nil, nil, errors.New("invalid key")
	}

	return memory, time, parallelism, salt, key, nil
}
