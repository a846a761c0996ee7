package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

// GenerateConfirmationToken returns a random v4 UUID
func GenerateConfirmationToken() string {
	return uuid.NewString()
}

// GenerateOTP returns a numeric code of exactly length digits, drawn uniformly
// from [0, 10^length-1] and zero-padded.
func GenerateOTP(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("invalid otp length %d", length)
	}

	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}

	code := n.String()
	return strings.Repeat("0", length-len(code)) + code, nil
}
