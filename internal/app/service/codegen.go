package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
)

const (
	// DefaultCodeLength is the number of characters in a generated code.
	DefaultCodeLength = 7

	// Alphabet holds the 62 characters codes are drawn from.
	Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// ErrInvalidCodeLength is returned for a non-positive code length.
var ErrInvalidCodeLength = errors.New("code length must be positive")

// CodeGenerator produces random codes. Every character is drawn independently
// and uniformly from Alphabet using a cryptographically secure source.
type CodeGenerator struct {
	length int
	random io.Reader
}

// NewCodeGenerator creates a generator of codes with the given length.
func NewCodeGenerator(length int) (*CodeGenerator, error) {
	return newCodeGenerator(length, rand.Reader)
}

func newCodeGenerator(length int, random io.Reader) (*CodeGenerator, error) {
	if length <= 0 {
		return nil, ErrInvalidCodeLength
	}

	return &CodeGenerator{
		length: length,
		random: random,
	}, nil
}

// Length returns the length of generated codes.
func (g *CodeGenerator) Length() int {
	return g.length
}

// Generate returns a new code.
func (g *CodeGenerator) Generate() (string, error) {
	code := make([]byte, g.length)
	max := big.NewInt(int64(len(Alphabet)))

	for i := range code {
		n, err := rand.Int(g.random, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		code[i] = Alphabet[n.Int64()]
	}

	return string(code), nil
}
