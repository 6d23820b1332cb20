// Package swapid defines the 128-bit identifier that keys a swap's
// persistent record and routes peer messages to the correct swap task.
package swapid

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// Size is the length in bytes of an ID.
const Size = 16

// ID is a 128-bit swap identifier, assigned at handshake. Like
// chainhash.Hash, it is a fixed-size array value rather than a slice, so
// it can be used directly as a map key and copied by value.
type ID [Size]byte

// String returns the plain (non-reversed) hex encoding of the id.
func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

// New generates a fresh random swap id.
func New() (ID, error) {
	var id ID
	if _, err := rand.Read(id[:]); err != nil {
		return ID{}, fmt.Errorf("unable to generate swap id: %w", err)
	}
	return id, nil
}

// FromString parses a hex-encoded swap id.
func FromString(s string) (ID, error) {
	var id ID

	b, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("invalid swap id %q: %w", s, err)
	}
	if len(b) != Size {
		return id, fmt.Errorf("invalid swap id length: got %d want %d",
			len(b), Size)
	}

	copy(id[:], b)
	return id, nil
}

// IsZero reports whether id is the zero value, used to detect
// uninitialized swap records.
func (id ID) IsZero() bool {
	return id == ID{}
}
