// Package csrf implements the double-submit-cookie anti-forgery scheme:
// a token minted at checkout start is stored in an origin-scoped cookie
// and echoed in the body of every state-changing request.
package csrf

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// CookieName is the cookie under which the minted token is stored.
const CookieName = "csrf_token"

const tokenBytes = 32

// Mint returns a fresh hex-encoded token with 256 bits of entropy.
func Mint() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("mint csrf token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Verify reports whether the submitted token matches the stored one.
// Either side absent is a mismatch, as is a length difference. Equal-length
// inputs are compared in constant time, never returning early on the first
// differing byte.
func Verify(submitted, stored string) bool {
	if submitted == "" || stored == "" {
		return false
	}
	if len(submitted) != len(stored) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(submitted), []byte(stored)) == 1
}
