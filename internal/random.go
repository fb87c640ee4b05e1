package internal

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
)

const minResetTokenBytes = 32

// NewResetToken returns an opaque url-safe token carrying n bytes of
// entropy. n is floored at 32 (256 bits); the encoded form is base64url
// without padding so it survives query strings and request bodies intact.
func NewResetToken(n int) (string, error) {
	if n < minResetTokenBytes {
		n = minResetTokenBytes
	}

	raw := make([]byte, n)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}

	token := base64.RawURLEncoding.EncodeToString(raw)
	if token == "" {
		return "", errors.New("reset token generation produced empty token")
	}
	return token, nil
}
