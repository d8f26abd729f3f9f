package model

import (
	"hash"

	"golang.org/x/crypto/blake2b"
)

// HashWriter incrementally hashes data without concatenating it into a
// single buffer first. It exposes an io.Writer and a Finalize method, the
// same streaming-hash idiom the teacher's util/daghash package uses for
// double-SHA256 block hashes - adapted here to blake2b-256, the hash this
// ledger's original ed25519/blake2b lineage uses for block hashes, work
// thresholds, and address checksums alike.
type HashWriter struct {
	inner hash.Hash
}

// NewHashWriter returns a new HashWriter.
func NewHashWriter() *HashWriter {
	h, err := blake2b.New256(nil)
	if err != nil {
		// blake2b.New256 only fails for an oversized key, and we pass nil.
		panic(err)
	}
	return &HashWriter{inner: h}
}

// Write always returns (len(p), nil).
func (w *HashWriter) Write(p []byte) (int, error) {
	return w.inner.Write(p)
}

// Finalize returns the resulting hash.
func (w *HashWriter) Finalize() Hash {
	var h Hash
	copy(h[:], w.inner.Sum(nil))
	return h
}

// BlockHash computes the canonical hash of a block: blake2b-256 over its
// SigningMessage (kind-specific fields only, excluding Signature and Work),
// per spec.md §3.
func BlockHash(b Block) Hash {
	w := NewHashWriter()
	_, _ = w.Write(b.SigningMessage())
	return w.Finalize()
}
