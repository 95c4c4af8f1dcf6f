// Package signature implements the shared-secret request signing scheme:
// a hex-encoded HMAC-SHA256 digest over the raw request body.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Compute returns the hex HMAC-SHA256 of body under secret. Producers must
// sign the exact bytes they send; any re-serialisation breaks the signature.
func Compute(secret []byte, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks a caller-supplied signature against body using a
// constant-time comparison. A missing secret or missing signature always
// fails closed.
func Verify(secret []byte, body []byte, provided string) bool {
	if len(secret) == 0 || provided == "" {
		return false
	}
	expected := Compute(secret, body)
	return hmac.Equal([]byte(expected), []byte(provided))
}
