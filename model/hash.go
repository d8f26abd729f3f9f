package model

import (
	"encoding/hex"

	"github.com/pkg/errors"
)

// HashSize is the size, in bytes, of a Hash.
const HashSize = 32

// Hash is an opaque 256-bit value. It is used for block hashes and for
// work/signature roots; it carries no structure of its own.
type Hash [HashSize]byte

// ZeroHash is the hash with all bytes set to zero. It is used as the
// "previous" value of an Open block and as the "not present" sentinel for
// pending/frontier/successor lookups.
var ZeroHash Hash

// IsZero reports whether h is the zero hash.
func (h Hash) IsZero() bool {
	return h == ZeroHash
}

// String returns the lowercase hex encoding of h.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Bytes returns a copy of h's bytes.
func (h Hash) Bytes() []byte {
	b := make([]byte, HashSize)
	copy(b, h[:])
	return b
}

// Less reports whether h sorts lexicographically before other. Used to
// break ties deterministically among blocks with equal tally weight.
func (h Hash) Less(other Hash) bool {
	for i := range h {
		if h[i] != other[i] {
			return h[i] < other[i]
		}
	}
	return false
}

// HashFromBytes copies b into a new Hash. b must be exactly HashSize bytes.
func HashFromBytes(b []byte) (Hash, error) {
	var h Hash
	if len(b) != HashSize {
		return h, errors.Errorf("invalid hash length: want %d, got %d", HashSize, len(b))
	}
	copy(h[:], b)
	return h, nil
}

// HashFromString decodes a hex-encoded hash.
func HashFromString(s string) (Hash, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Hash{}, errors.WithStack(err)
	}
	return HashFromBytes(b)
}

// AccountId is a 256-bit public key naming an account chain.
type AccountId = Hash
