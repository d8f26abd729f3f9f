// Package store provides the concrete DBBucket/DBKey types shared by every
// Store backend (memstore, ldbstore), and the bucket names for the table
// families spec.md §6 lists.
package store

import (
	"bytes"

	"github.com/blocklattice/ledgercore/model"
)

// Bucket names for the table families spec.md §6 lists. One bucket per
// table, named the way the teacher names its buckets: lowercase, hyphenated
// byte strings (see domain/consensus/datastructures/finalitystore's
// bucketName).
var (
	BucketAccounts       = []byte("accounts")
	BucketBlocks         = []byte("blocks")
	BucketPending        = []byte("pending")
	BucketFrontier       = []byte("frontier")
	BucketSuccessor      = []byte("successor")
	BucketRepresentation = []byte("representation")
	BucketChecksum       = []byte("checksum")
	BucketMeta           = []byte("meta")
	BucketConsumed       = []byte("consumed")
	BucketConsumedBy     = []byte("consumed-by")
	BucketUndo           = []byte("undo")
)

// Bucket is the concrete model.DBBucket: a '/'-joined path of bucket name
// segments.
type Bucket struct {
	path []byte
}

// MakeBucket returns the top-level bucket for the given name.
func MakeBucket(name []byte) *Bucket {
	return &Bucket{path: append([]byte{}, name...)}
}

// Bucket implements model.DBBucket.
func (b *Bucket) Bucket(name []byte) model.DBBucket {
	child := make([]byte, 0, len(b.path)+1+len(name))
	child = append(child, b.path...)
	child = append(child, '/')
	child = append(child, name...)
	return &Bucket{path: child}
}

// Key implements model.DBBucket.
func (b *Bucket) Key(suffix []byte) model.DBKey {
	return &Key{bucket: b, suffix: append([]byte{}, suffix...)}
}

// Path implements model.DBBucket.
func (b *Bucket) Path() []byte {
	return b.path
}

// Key is the concrete model.DBKey: a bucket path plus a suffix, joined with
// a separator that cannot appear inside a bucket path segment.
type Key struct {
	bucket *Bucket
	suffix []byte
}

// Bytes implements model.DBKey: the full flat key used by the backing
// store (bucket path, a NUL separator, then the suffix).
func (k *Key) Bytes() []byte {
	buf := make([]byte, 0, len(k.bucket.path)+1+len(k.suffix))
	buf = append(buf, k.bucket.path...)
	buf = append(buf, 0)
	buf = append(buf, k.suffix...)
	return buf
}

// Bucket implements model.DBKey.
func (k *Key) Bucket() model.DBBucket {
	return k.bucket
}

// Suffix implements model.DBKey.
func (k *Key) Suffix() []byte {
	return k.suffix
}

// cursorPrefix returns the flat-key prefix a cursor over this bucket must
// scan: the bucket path followed by the NUL separator.
func cursorPrefix(b model.DBBucket) []byte {
	buf := make([]byte, 0, len(b.Path())+1)
	buf = append(buf, b.Path()...)
	buf = append(buf, 0)
	return buf
}

// withinBucket reports whether flatKey belongs to the bucket with the given
// prefix.
func withinBucket(flatKey, prefix []byte) bool {
	return bytes.HasPrefix(flatKey, prefix)
}
