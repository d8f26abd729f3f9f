package store

import (
	"github.com/blocklattice/ledgercore/ledgererrors"
	"github.com/blocklattice/ledgercore/model"
)

var checksumBucket = MakeBucket(BucketChecksum)

// ChecksumBuckets is the number of buckets the checksum table partitions
// the hash space into, one per possible value of a block hash's
// highest-order byte (spec.md §4.4's "bucketed by high-order bits").
const ChecksumBuckets = 256

// ChecksumStore is a typed view over the checksum table: bucket index ->
// XOR-folded accumulator Hash. A missing entry reads as the zero hash,
// the XOR identity, rather than ErrNotFound.
type ChecksumStore struct{}

func (ChecksumStore) Get(r model.DBReader, bucket uint8) (model.Hash, error) {
	raw, err := r.Get(checksumBucket.Key([]byte{bucket}))
	if err != nil {
		if ledgererrors.IsNotFoundError(err) {
			return model.ZeroHash, nil
		}
		return model.ZeroHash, err
	}
	return model.HashFromBytes(raw)
}

func (ChecksumStore) Put(w model.DBWriter, bucket uint8, accumulator model.Hash) error {
	if accumulator.IsZero() {
		return w.Delete(checksumBucket.Key([]byte{bucket}))
	}
	return w.Put(checksumBucket.Key([]byte{bucket}), accumulator.Bytes())
}
