package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/rand"   // secure random number generation
	"encoding/hex"  // hex encoding of random bytes
)

// NewSessionToken returns an opaque session identifier made of 32 bytes of
// cryptographically secure random data, hex encoded (64 characters). The
// value carries no information about the user; the session store maps it to
// a user id server-side.
func NewSessionToken() (string, error) {
	return randomHex(32)
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data. If the random number generator
// fails, an error is returned.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
