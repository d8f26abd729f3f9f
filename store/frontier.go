package store

import "github.com/blocklattice/ledgercore/model"

var frontierBucket = MakeBucket(BucketFrontier)

// FrontierStore is a typed view over the frontier table: tip Hash ->
// owning AccountId (spec.md §3, invariant I5).
type FrontierStore struct{}

func (FrontierStore) Get(r model.DBReader, tip model.Hash) (model.AccountId, error) {
	raw, err := r.Get(frontierBucket.Key(tip[:]))
	if err != nil {
		return model.ZeroHash, err
	}
	return model.HashFromBytes(raw)
}

func (FrontierStore) Has(r model.DBReader, tip model.Hash) (bool, error) {
	return r.Has(frontierBucket.Key(tip[:]))
}

func (FrontierStore) Put(w model.DBWriter, tip model.Hash, account model.AccountId) error {
	return w.Put(frontierBucket.Key(tip[:]), account.Bytes())
}

func (FrontierStore) Delete(w model.DBWriter, tip model.Hash) error {
	return w.Delete(frontierBucket.Key(tip[:]))
}
