package store

import (
	"github.com/blocklattice/ledgercore/ledgererrors"
	"github.com/blocklattice/ledgercore/model"
)

var representationBucket = MakeBucket(BucketRepresentation)

// RepresentationStore is a typed view over the representation table:
// representative AccountId -> delegated weight Amount (spec.md §3's
// RepresentationWeight). A missing entry reads as ZeroAmount rather than
// ErrNotFound, since every AccountId is implicitly a representative with
// zero weight until credited.
type RepresentationStore struct{}

func (RepresentationStore) Get(r model.DBReader, account model.AccountId) (model.Amount, error) {
	raw, err := r.Get(representationBucket.Key(account[:]))
	if err != nil {
		if ledgererrors.IsNotFoundError(err) {
			return model.ZeroAmount, nil
		}
		return model.ZeroAmount, err
	}
	hi, lo, err := uint128FromBytes(raw)
	if err != nil {
		return model.ZeroAmount, err
	}
	return amountFromHalves(hi, lo), nil
}

func (RepresentationStore) Put(w model.DBWriter, account model.AccountId, weight model.Amount) error {
	if weight.IsZero() {
		return w.Delete(representationBucket.Key(account[:]))
	}
	hi, lo := amountHalves(weight)
	return w.Put(representationBucket.Key(account[:]), append(uint64ToBytes(hi), uint64ToBytes(lo)...))
}

func uint64ToBytes(v uint64) []byte {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[7-i] = byte(v >> (8 * i))
	}
	return b
}

func uint128FromBytes(raw []byte) (hi, lo uint64, err error) {
	if len(raw) != 16 {
		return 0, 0, ledgererrors.ErrNotFound
	}
	for i := 0; i < 8; i++ {
		hi = hi<<8 | uint64(raw[i])
	}
	for i := 8; i < 16; i++ {
		lo = lo<<8 | uint64(raw[i])
	}
	return hi, lo, nil
}
