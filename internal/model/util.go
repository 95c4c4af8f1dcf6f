package model

import (
	"github.com/btcsuite/btcutil/base58"
	"github.com/google/uuid"
)

// CreateID mints an opaque message identifier for producers that do not
// bring their own.
func CreateID() string {
	uuid, _ := uuid.NewRandom()
	return base58.Encode(uuid[:])
}
