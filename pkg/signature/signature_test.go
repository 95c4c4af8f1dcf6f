package signature

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerify(t *testing.T) {
	assert := assert.New(t)

	secret := []byte("testsecret")
	body := []byte(`{"message_id":"m1","from":"+919876543210"}`)

	sig := Compute(secret, body)
	assert.Len(sig, 64)

	assert.True(Verify(secret, body, sig))
	assert.False(Verify(secret, body, "deadbeef"))
	assert.False(Verify(secret, body, ""))
	assert.False(Verify(nil, body, sig))
	assert.False(Verify([]byte{}, body, sig))
	assert.False(Verify([]byte("othersecret"), body, sig))
	assert.False(Verify(secret, []byte(`{"message_id":"m2"}`), sig))
}
