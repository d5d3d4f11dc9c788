// Package token mints opaque bearer secrets such as session refresh tokens.
package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// refreshTokenBytes of entropy encode to a 43 character URL-safe string.
const refreshTokenBytes = 32

// NewRefreshToken returns a random URL-safe refresh token.
func NewRefreshToken() (string, error) {
	b := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
