package cryptox

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	password := []byte("secret-password")
	salt := []byte("fixed-salt")

	key1 := deriveKey(password, salt)
	key2 := deriveKey(password, salt)

	if !bytes.Equal(key1, key2) {
		t.Errorf("expected same result for same inputs, got different")
	}

	expectedHex := "34f7a1c64df63ab1ad5b5ee06e64db5713b35f81839823304db63e8e5e6a6a39"
	if hex.EncodeToString(key1) != expectedHex {
		t.Errorf("expected %s, got %s", expectedHex, hex.EncodeToString(key1))
	}
}

func TestDeriveKey_DifferentSalts(t *testing.T) {
	password := []byte("secret-password")

	if bytes.Equal(deriveKey(password, []byte("salt-1")), deriveKey(password, []byte("salt-2"))) {
		t.Errorf("expected different results for different salts, got same")
	}
}

func TestHashers_RoundTrip(t *testing.T) {
	hashers := map[string]Hasher{
		"bcrypt":   NewBcryptHasher(4),
		"argon2id": NewArgon2Hasher(),
	}

	for name, h := range hashers {
		t.Run(name, func(t *testing.T) {
			digest, err := h.Hash("Passw0rd!")
			require.NoError(t, err)
			assert.NotEqual(t, "Passw0rd!", digest)

			assert.True(t, h.Verify("Passw0rd!", digest))
			assert.False(t, h.Verify("passw0rd!", digest))
			assert.False(t, h.Verify("", digest))

			// salted: same secret, different digest
			again, err := h.Hash("Passw0rd!")
			require.NoError(t, err)
			assert.NotEqual(t, digest, again)
		})
	}
}

func TestArgon2Hasher_Format(t *testing.T) {
	digest, err := NewArgon2Hasher().Hash("123456")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(digest, "$argon2id$v=19$m=65536,t=1,p=4$"), digest)
}

func TestArgon2Hasher_RejectsMalformedDigest(t *testing.T) {
	h := NewArgon2Hasher()
	for _, digest := range []string{
		"",
		"plain",
		"$argon2i$v=19$m=65536,t=1,p=4$c2FsdA$a2V5",
		"$argon2id$v=18$m=65536,t=1,p=4$c2FsdA$a2V5",
		"$argon2id$v=19$garbage$c2FsdA$a2V5",
		"$argon2id$v=19$m=65536,t=1,p=4$!!!$a2V5",
	} {
		assert.False(t, h.Verify("x", digest), digest)
	}
}

func TestBcryptHasher_DoesNotVerifyArgonDigest(t *testing.T) {
	digest, err := NewArgon2Hasher().Hash("secret")
	require.NoError(t, err)
	assert.False(t, NewBcryptHasher(4).Verify("secret", digest))
}

func TestNewHasher(t *testing.T) {
	h, err := NewHasher("")
	require.NoError(t, err)
	assert.IsType(t, &BcryptHasher{}, h)

	h, err = NewHasher("ARGON2ID")
	require.NoError(t, err)
	assert.IsType(t, &Argon2Hasher{}, h)

	_, err = NewHasher("md5")
	assert.True(t, errors.Is(err, ErrUnknownAlgorithm))
}
