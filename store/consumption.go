package store

import (
	"bytes"

	"github.com/blocklattice/ledgercore/model"
	"github.com/blocklattice/ledgercore/util/binaryserializer"
)

var (
	consumedBucket   = MakeBucket(BucketConsumed)
	consumedByBucket = MakeBucket(BucketConsumedBy)
)

// ConsumedRecord is what a receiving block (legacy Receive/Open, or a
// state block taking the receive path) consumed: the hash of the send it
// referenced and the PendingEntry that send had created. Rollback Engine
// reads this, keyed by the receiving block's own hash, to restore the
// PendingEntry it deleted at apply time - information that cannot be
// reconstructed from the receiving block's wire fields alone, since a
// legacy Receive/Open carries no amount field of its own.
type ConsumedRecord struct {
	SendHash model.Hash
	Entry    model.PendingEntry
}

// ConsumedStore is a typed view over the consumed table: receiving block
// Hash -> ConsumedRecord. Grounded on the teacher's
// consensusstatemanager UTXO-diff idiom - a small record of exactly what a
// block changed, kept only so a later rollback can invert it, not part of
// the ledger's steady-state query surface.
type ConsumedStore struct{}

func (ConsumedStore) Get(r model.DBReader, receivingHash model.Hash) (*ConsumedRecord, error) {
	raw, err := r.Get(consumedBucket.Key(receivingHash[:]))
	if err != nil {
		return nil, err
	}
	return decodeConsumedRecord(raw)
}

func (ConsumedStore) Put(w model.DBWriter, receivingHash model.Hash, record *ConsumedRecord) error {
	raw, err := encodeConsumedRecord(record)
	if err != nil {
		return err
	}
	return w.Put(consumedBucket.Key(receivingHash[:]), raw)
}

func (ConsumedStore) Delete(w model.DBWriter, receivingHash model.Hash) error {
	return w.Delete(consumedBucket.Key(receivingHash[:]))
}

func encodeConsumedRecord(rec *ConsumedRecord) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := buf.Write(rec.SendHash[:]); err != nil {
		return nil, err
	}
	if _, err := buf.Write(rec.Entry.Source[:]); err != nil {
		return nil, err
	}
	hi, lo := amountHalves(rec.Entry.Amount)
	if err := binaryserializer.PutUint128(&buf, hi, lo); err != nil {
		return nil, err
	}
	if err := binaryserializer.PutUint8(&buf, uint8(rec.Entry.Epoch)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeConsumedRecord(raw []byte) (*ConsumedRecord, error) {
	r := bytes.NewReader(raw)
	rec := &ConsumedRecord{}
	var err error
	if rec.SendHash, err = readHash32(r); err != nil {
		return nil, err
	}
	if rec.Entry.Source, err = readHash32(r); err != nil {
		return nil, err
	}
	hi, lo, err := binaryserializer.Uint128(r)
	if err != nil {
		return nil, err
	}
	rec.Entry.Amount = amountFromHalves(hi, lo)
	epoch, err := binaryserializer.Uint8(r)
	if err != nil {
		return nil, err
	}
	rec.Entry.Epoch = model.Epoch(epoch)
	return rec, nil
}

// ConsumedByStore is a typed view over the consumed-by table: send block
// Hash -> the hash of the block that consumed its pending entry, or
// ledgererrors.ErrNotFound while it remains unconsumed. Rollback Engine
// uses this to find the block it must cascade-undo first when asked to
// roll back a send whose pending entry has already been spent (spec.md's
// cascade rule).
type ConsumedByStore struct{}

func (ConsumedByStore) Get(r model.DBReader, sendHash model.Hash) (model.Hash, error) {
	raw, err := r.Get(consumedByBucket.Key(sendHash[:]))
	if err != nil {
		return model.ZeroHash, err
	}
	return model.HashFromBytes(raw)
}

func (ConsumedByStore) Has(r model.DBReader, sendHash model.Hash) (bool, error) {
	return r.Has(consumedByBucket.Key(sendHash[:]))
}

func (ConsumedByStore) Put(w model.DBWriter, sendHash, consumerHash model.Hash) error {
	return w.Put(consumedByBucket.Key(sendHash[:]), consumerHash.Bytes())
}

func (ConsumedByStore) Delete(w model.DBWriter, sendHash model.Hash) error {
	return w.Delete(consumedByBucket.Key(sendHash[:]))
}
