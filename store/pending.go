package store

import (
	"bytes"

	"github.com/blocklattice/ledgercore/model"
	"github.com/blocklattice/ledgercore/util/binaryserializer"
)

var pendingBucket = MakeBucket(BucketPending)

// PendingStore is a typed view over the pending table: PendingKey ->
// PendingEntry (spec.md §3).
type PendingStore struct{}

func (PendingStore) Get(r model.DBReader, key model.PendingKey) (*model.PendingEntry, error) {
	raw, err := r.Get(pendingBucket.Key(key.Bytes()))
	if err != nil {
		return nil, err
	}
	return decodePendingEntry(raw)
}

func (PendingStore) Has(r model.DBReader, key model.PendingKey) (bool, error) {
	return r.Has(pendingBucket.Key(key.Bytes()))
}

func (PendingStore) Put(w model.DBWriter, key model.PendingKey, entry *model.PendingEntry) error {
	raw, err := encodePendingEntry(entry)
	if err != nil {
		return err
	}
	return w.Put(pendingBucket.Key(key.Bytes()), raw)
}

func (PendingStore) Delete(w model.DBWriter, key model.PendingKey) error {
	return w.Delete(pendingBucket.Key(key.Bytes()))
}

func encodePendingEntry(e *model.PendingEntry) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := buf.Write(e.Source[:]); err != nil {
		return nil, err
	}
	hi, lo := amountHalves(e.Amount)
	if err := binaryserializer.PutUint128(&buf, hi, lo); err != nil {
		return nil, err
	}
	if err := binaryserializer.PutUint8(&buf, uint8(e.Epoch)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodePendingEntry(raw []byte) (*model.PendingEntry, error) {
	r := bytes.NewReader(raw)
	e := &model.PendingEntry{}
	var err error
	if e.Source, err = readHash32(r); err != nil {
		return nil, err
	}
	hi, lo, err := binaryserializer.Uint128(r)
	if err != nil {
		return nil, err
	}
	e.Amount = amountFromHalves(hi, lo)
	epoch, err := binaryserializer.Uint8(r)
	if err != nil {
		return nil, err
	}
	e.Epoch = model.Epoch(epoch)
	return e, nil
}
