package store

import (
	"github.com/blocklattice/ledgercore/ledgererrors"
	"github.com/blocklattice/ledgercore/model"
)

var (
	metaBucket     = MakeBucket(BucketMeta)
	totalBlocksKey = metaBucket.Key([]byte("total_blocks"))
)

// MetaStore tracks ledger-wide counters that do not belong to any single
// account or bucket - currently just the total block count across every
// chain, which weight.Index's bootstrap override is gated on (spec.md
// §4.3).
type MetaStore struct{}

// TotalBlocks returns the number of blocks ever successfully processed and
// not since rolled back.
func (MetaStore) TotalBlocks(r model.DBReader) (uint64, error) {
	raw, err := r.Get(totalBlocksKey)
	if err != nil {
		if ledgererrors.IsNotFoundError(err) {
			return 0, nil
		}
		return 0, err
	}
	return bytesToUint64(raw), nil
}

// IncrementTotalBlocks adds one to the total block counter, called once
// per block the Ledger Processor accepts.
func (MetaStore) IncrementTotalBlocks(tx model.DBTransaction) error {
	n, err := MetaStore{}.TotalBlocks(tx)
	if err != nil {
		return err
	}
	return tx.Put(totalBlocksKey, uint64ToBytesBE(n+1))
}

// DecrementTotalBlocks subtracts one from the total block counter, called
// once per block the Rollback Engine undoes.
func (MetaStore) DecrementTotalBlocks(tx model.DBTransaction) error {
	n, err := MetaStore{}.TotalBlocks(tx)
	if err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	return tx.Put(totalBlocksKey, uint64ToBytesBE(n-1))
}

func uint64ToBytesBE(v uint64) []byte {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[7-i] = byte(v >> (8 * i))
	}
	return b
}

func bytesToUint64(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}
