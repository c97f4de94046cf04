package cryptox

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

// MakeRandHexString generates size random bytes and returns them hex encoded,
// so the result is twice as long as size.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// WipeByteArray zeroes b in place. Nil is allowed.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// CodeGenerator produces one-time codes.
type CodeGenerator interface {
	Generate() (string, error)
}

const (
	codeMin = 100000
	codeMax = 999999
)

// RandomCodeGenerator draws a uniformly random 6-digit code in
// [100000, 999999] from crypto/rand.
type RandomCodeGenerator struct{}

func (RandomCodeGenerator) Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", fmt.Errorf("failed to generate random number: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+codeMin), nil
}

// FixedCodeGenerator always returns Code. Useful for tests and demos.
type FixedCodeGenerator struct {
	Code string
}

func (g FixedCodeGenerator) Generate() (string, error) {
	return g.Code, nil
}
