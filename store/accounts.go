package store

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/blocklattice/ledgercore/model"
	"github.com/blocklattice/ledgercore/util/binaryserializer"
)

var accountsBucket = MakeBucket(BucketAccounts)

// AccountStore is a typed view over the accounts table: AccountId ->
// AccountInfo (spec.md §3).
type AccountStore struct{}

// Get returns the AccountInfo for id, or ledgererrors.ErrNotFound if id has
// no open account.
func (AccountStore) Get(r model.DBReader, id model.AccountId) (*model.AccountInfo, error) {
	raw, err := r.Get(accountsBucket.Key(id[:]))
	if err != nil {
		return nil, err
	}
	return decodeAccountInfo(raw)
}

// Has reports whether id has an open account.
func (AccountStore) Has(r model.DBReader, id model.AccountId) (bool, error) {
	return r.Has(accountsBucket.Key(id[:]))
}

// Put writes info for id, overwriting any previous entry.
func (AccountStore) Put(w model.DBWriter, id model.AccountId, info *model.AccountInfo) error {
	raw, err := encodeAccountInfo(info)
	if err != nil {
		return err
	}
	return w.Put(accountsBucket.Key(id[:]), raw)
}

// Delete removes id's account entirely (used by Rollback undoing an Open).
func (AccountStore) Delete(w model.DBWriter, id model.AccountId) error {
	return w.Delete(accountsBucket.Key(id[:]))
}

func encodeAccountInfo(info *model.AccountInfo) ([]byte, error) {
	var buf bytes.Buffer
	fields := [][32]byte{info.Head, info.OpenBlock, info.RepBlock}
	for _, h := range fields {
		if _, err := buf.Write(h[:]); err != nil {
			return nil, errors.WithStack(err)
		}
	}
	if _, err := buf.Write(info.Representative[:]); err != nil {
		return nil, errors.WithStack(err)
	}
	hi, lo := amountHalves(info.Balance)
	if err := binaryserializer.PutUint128(&buf, hi, lo); err != nil {
		return nil, err
	}
	if err := binaryserializer.PutUint64(&buf, info.Modified); err != nil {
		return nil, err
	}
	if err := binaryserializer.PutUint64(&buf, info.BlockCount); err != nil {
		return nil, err
	}
	if err := binaryserializer.PutUint8(&buf, uint8(info.Epoch)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeAccountInfo(raw []byte) (*model.AccountInfo, error) {
	r := bytes.NewReader(raw)
	info := &model.AccountInfo{}
	var err error
	if info.Head, err = readHash32(r); err != nil {
		return nil, err
	}
	if info.OpenBlock, err = readHash32(r); err != nil {
		return nil, err
	}
	if info.RepBlock, err = readHash32(r); err != nil {
		return nil, err
	}
	if info.Representative, err = readHash32(r); err != nil {
		return nil, err
	}
	hi, lo, err := binaryserializer.Uint128(r)
	if err != nil {
		return nil, err
	}
	info.Balance = amountFromHalves(hi, lo)
	if info.Modified, err = binaryserializer.Uint64(r); err != nil {
		return nil, err
	}
	if info.BlockCount, err = binaryserializer.Uint64(r); err != nil {
		return nil, err
	}
	epoch, err := binaryserializer.Uint8(r)
	if err != nil {
		return nil, err
	}
	info.Epoch = model.Epoch(epoch)
	return info, nil
}

func readHash32(r io.Reader) (model.Hash, error) {
	var h model.Hash
	if _, err := io.ReadFull(r, h[:]); err != nil {
		return h, errors.WithStack(err)
	}
	return h, nil
}

// amountHalves/amountFromHalves convert between an Amount and the
// big-endian uint64 pair binaryserializer.PutUint128/Uint128 use. Amount is
// a plain byte array, so indexing it from outside model does not require
// any exported accessor.
func amountHalves(a model.Amount) (hi, lo uint64) {
	return binary.BigEndian.Uint64(a[:8]), binary.BigEndian.Uint64(a[8:16])
}

func amountFromHalves(hi, lo uint64) model.Amount {
	var a model.Amount
	binary.BigEndian.PutUint64(a[:8], hi)
	binary.BigEndian.PutUint64(a[8:16], lo)
	return a
}
