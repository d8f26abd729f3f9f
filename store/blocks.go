package store

import (
	"github.com/pkg/errors"

	"github.com/blocklattice/ledgercore/model"
)

var blocksBucket = MakeBucket(BucketBlocks)

// BlockStore is a typed view over the blocks table: block Hash -> (owning
// account, Block), serialized per spec.md §6. The owning account is
// denormalized alongside the wire-format block (which for the legacy
// kinds carries no Account field of its own) so that the Ledger
// Processor's signature verification and the Rollback Engine's walk from
// an arbitrary hash back to its chain never need a second index beyond
// Frontier/Successor.
type BlockStore struct{}

// Get returns the block stored at hash and the account whose chain it
// belongs to.
func (BlockStore) Get(r model.DBReader, hash model.Hash) (model.Block, model.AccountId, error) {
	raw, err := r.Get(blocksBucket.Key(hash[:]))
	if err != nil {
		return nil, model.ZeroHash, err
	}
	if len(raw) < model.HashSize {
		return nil, model.ZeroHash, errors.New("store: corrupt block record")
	}
	owner, err := model.HashFromBytes(raw[:model.HashSize])
	if err != nil {
		return nil, model.ZeroHash, err
	}
	block, err := model.DecodeBlockFromBytes(raw[model.HashSize:])
	if err != nil {
		return nil, model.ZeroHash, err
	}
	return block, owner, nil
}

func (BlockStore) Has(r model.DBReader, hash model.Hash) (bool, error) {
	return r.Has(blocksBucket.Key(hash[:]))
}

// Put stores block at hash, owned by account owner.
func (BlockStore) Put(w model.DBWriter, hash model.Hash, owner model.AccountId, block model.Block) error {
	encoded, err := model.EncodeBlockToBytes(block)
	if err != nil {
		return err
	}
	raw := make([]byte, 0, model.HashSize+len(encoded))
	raw = append(raw, owner[:]...)
	raw = append(raw, encoded...)
	return w.Put(blocksBucket.Key(hash[:]), raw)
}

func (BlockStore) Delete(w model.DBWriter, hash model.Hash) error {
	return w.Delete(blocksBucket.Key(hash[:]))
}
