package store

import "github.com/blocklattice/ledgercore/model"

var undoBucket = MakeBucket(BucketUndo)

// UndoStore is a typed view over the undo table: extending-block Hash ->
// the owning account's AccountInfo exactly as it was immediately before
// that block was applied. The Ledger Processor writes one entry per
// accepted block that extends an existing chain (not opens, which have no
// "prior" AccountInfo to record); the Rollback Engine reads and deletes it
// to restore the account's balance, representative, RepBlock, BlockCount
// and epoch in one step, and to compute the exact weight reversal via
// weight.Index - without needing to special-case what kind of block it is
// or recompute historical amounts from the block's own wire fields, most
// of which (legacy Receive/Open/Change in particular) don't carry enough
// information to reconstruct history on their own.
type UndoStore struct{}

func (UndoStore) Get(r model.DBReader, hash model.Hash) (*model.AccountInfo, error) {
	raw, err := r.Get(undoBucket.Key(hash[:]))
	if err != nil {
		return nil, err
	}
	return decodeAccountInfo(raw)
}

func (UndoStore) Put(w model.DBWriter, hash model.Hash, priorInfo *model.AccountInfo) error {
	raw, err := encodeAccountInfo(priorInfo)
	if err != nil {
		return err
	}
	return w.Put(undoBucket.Key(hash[:]), raw)
}

func (UndoStore) Delete(w model.DBWriter, hash model.Hash) error {
	return w.Delete(undoBucket.Key(hash[:]))
}
