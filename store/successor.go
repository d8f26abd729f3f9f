package store

import "github.com/blocklattice/ledgercore/model"

var successorBucket = MakeBucket(BucketSuccessor)

// SuccessorStore is a typed view over the successor table: block Hash ->
// the next block on the same chain, or ledgererrors.ErrNotFound if it is
// the chain tip (spec.md §3).
type SuccessorStore struct{}

func (SuccessorStore) Get(r model.DBReader, hash model.Hash) (model.Hash, error) {
	raw, err := r.Get(successorBucket.Key(hash[:]))
	if err != nil {
		return model.ZeroHash, err
	}
	return model.HashFromBytes(raw)
}

func (SuccessorStore) Has(r model.DBReader, hash model.Hash) (bool, error) {
	return r.Has(successorBucket.Key(hash[:]))
}

func (SuccessorStore) Put(w model.DBWriter, hash model.Hash, successor model.Hash) error {
	return w.Put(successorBucket.Key(hash[:]), successor.Bytes())
}

func (SuccessorStore) Delete(w model.DBWriter, hash model.Hash) error {
	return w.Delete(successorBucket.Key(hash[:]))
}
