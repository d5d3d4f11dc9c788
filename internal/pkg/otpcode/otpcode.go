package otpcode

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	// Length is the number of digits in a code.
	Length = 6
	lowest = 100000
	span   = 900000 // lowest..999999 inclusive
)

// Generate returns a uniformly distributed 6-digit code in "100000".."999999".
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(span))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+lowest), nil
}
