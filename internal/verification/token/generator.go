// Package token produces the numeric verification tokens themselves.
package token

import (
	"crypto/rand"
	"math/big"

	"firstaccess/internal/verification/models"
	dErrors "firstaccess/pkg/domain-errors"
)

// Generator produces a fixed-length digit string. Implementations are not
// required to be deterministic; tests inject their own.
type Generator interface {
	Generate(length int) (string, error)
}

// CryptoGenerator samples each digit uniformly from crypto/rand.
type CryptoGenerator struct{}

// NewCryptoGenerator returns the production token generator.
func NewCryptoGenerator() *CryptoGenerator {
	return &CryptoGenerator{}
}

var ten = big.NewInt(10)

// Generate returns a string of exactly length digits, each sampled
// independently of any prior token. Lengths outside the configured range
// are rejected.
func (g *CryptoGenerator) Generate(length int) (string, error) {
	if length < models.MinTokenLength || length > models.MaxTokenLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "token length must be between 4 and 8")
	}
	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", dErrors.Wrap(dErrors.CodeInternal, "token generation failed", err)
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}
