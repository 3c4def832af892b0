package common

import (
	"crypto/rand"
	"math/big"
	"strings"
)

var digitAlphabet = big.NewInt(10)

// GenerateDigitCode returns a string of n decimal digits, each drawn
// independently and uniformly from crypto/rand. Leading zeros are kept,
// so "000123" is a valid 6-digit code.
func GenerateDigitCode(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}

	var b strings.Builder
	b.Grow(n)

	for i := 0; i < n; i++ {
		d, err := rand.Int(rand.Reader, digitAlphabet)
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + d.Int64()))
	}

	return b.String(), nil
}
