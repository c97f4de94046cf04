// Package cryptox holds the hashing and randomness primitives used for
// passwords, one-time codes and secrets.
package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Hasher turns a secret into an irreversible salted digest and checks a
// candidate secret against a stored digest. Passwords and OTP codes share
// the same Hasher so the algorithm can be swapped in one place.
type Hasher interface {
	Hash(secret string) (string, error)
	Verify(secret, digest string) bool
}

const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)

var ErrUnknownAlgorithm = errors.New("unknown hash algorithm")

// NewHasher returns the Hasher registered under name. An empty name selects bcrypt.
func NewHasher(name string) (Hasher, error) {
	switch strings.ToLower(name) {
	case "", AlgorithmBcrypt:
		return NewBcryptHasher(BcryptCost), nil
	case AlgorithmArgon2id:
		return NewArgon2Hasher(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
}

// MaxSecretBytes is the longest secret bcrypt accepts. Callers reject longer
// input before hashing so that switching algorithms keeps the same rule.
const MaxSecretBytes = 72

// BcryptCost matches the cost factor the storefront has always used.
const BcryptCost = 10

// BcryptHasher hashes with bcrypt at a fixed cost.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher using cost; tests pass bcrypt.MinCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(secret string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(b), nil
}

func (h *BcryptHasher) Verify(secret, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret)) == nil
}

// argon2id parameters: 1 pass, 64 MiB, 4 lanes, 32-byte key.
const (
	argonTime    uint32 = 1
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 4
	argonKeyLen  uint32 = 32
	argonSaltLen        = 16
)

// Argon2Hasher stores digests in the PHC string format:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>
type Argon2Hasher struct{}

func NewArgon2Hasher() *Argon2Hasher {
	return &Argon2Hasher{}
}

func deriveKey(secret, salt []byte) []byte {
	return argon2.IDKey(secret, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

func (h *Argon2Hasher) Hash(secret string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("argon2: salt: %w", err)
	}
	key := deriveKey([]byte(secret), salt)

	enc := base64.RawStdEncoding
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		enc.EncodeToString(salt), enc.EncodeToString(key)), nil
}

func (h *Argon2Hasher) Verify(secret, digest string) bool {
	parts := strings.Split(digest, "$")
	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, key
	if len(parts) != 6 || parts[1] != AlgorithmArgon2id {
		return false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false
	}

	var memory, time uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false
	}

	enc := base64.RawStdEncoding
	salt, err := enc.DecodeString(parts[4])
	if err != nil {
		return false
	}
	want, err := enc.DecodeString(parts[5])
	if err != nil {
		return false
	}

	got := argon2.IDKey([]byte(secret), salt, time, memory, threads, uint32(len(want)))
	defer WipeByteArray(got)

	return subtle.ConstantTimeCompare(got, want) == 1
}
