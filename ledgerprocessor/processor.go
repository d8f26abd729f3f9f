// Package ledgerprocessor implements the Ledger Processor: the single
// entry point that validates a candidate block against the current Store
// state and, if valid, applies it (spec.md §4.1). Grounded on the
// teacher's blockprocessor.validateAndInsertBlock: a staged pipeline that
// validates first, discards nothing on a handled rejection, and commits
// its store mutations only once every rule for the block's kind has
// passed.
package ledgerprocessor

import (
	"time"

	"github.com/pkg/errors"

	"github.com/blocklattice/ledgercore/checksum"
	"github.com/blocklattice/ledgercore/genesis"
	"github.com/blocklattice/ledgercore/internal/logger"
	"github.com/blocklattice/ledgercore/ledgererrors"
	"github.com/blocklattice/ledgercore/model"
	"github.com/blocklattice/ledgercore/sigwork"
	"github.com/blocklattice/ledgercore/store"
	"github.com/blocklattice/ledgercore/weight"
)

var log = logger.RegisterSubSystem("PROC")

// Processor is the Ledger Processor. It holds no Store of its own - every
// operation takes the caller's model.DBTransaction - so one Processor is
// shared across however many concurrent writers the embedding application
// serializes (spec.md §5 requires exactly one write transaction per
// block).
type Processor struct {
	params   genesis.Params
	weight   *weight.Index
	checksum *checksum.Index

	accounts   store.AccountStore
	blocks     store.BlockStore
	pending    store.PendingStore
	frontier   store.FrontierStore
	successor  store.SuccessorStore
	meta       store.MetaStore
	consumed   store.ConsumedStore
	consumedBy store.ConsumedByStore
	undo       store.UndoStore

	// now returns the current time as seconds since the epoch, stamped
	// onto AccountInfo.Modified. Overridable so tests can pin time
	// without sleeping.
	now func() uint64
}

// New returns a Processor for the given network parameters and shared
// weight/checksum indexes.
func New(params genesis.Params, weightIndex *weight.Index, checksumIndex *checksum.Index) *Processor {
	return &Processor{
		params:   params,
		weight:   weightIndex,
		checksum: checksumIndex,
		now:      func() uint64 { return uint64(time.Now().Unix()) },
	}
}

// Process validates block against the current Store state and, on
// success, applies it within tx. It never returns both a non-nil error and
// a populated ProcessResult - a non-nil error means a Store operation
// itself failed (a fatal, not-this-block's-fault condition); every
// rejection the candidate block itself is responsible for comes back as a
// ProcessResultCode with a nil error.
func (p *Processor) Process(tx model.DBTransaction, block model.Block) (model.ProcessResult, error) {
	if !sigwork.CheckWork(block.Root(), block.Work(), p.params.WorkThreshold) {
		return reject(model.InsufficientWork), nil
	}

	hash := model.BlockHash(block)
	exists, err := p.blocks.Has(tx, hash)
	if err != nil {
		return model.ProcessResult{}, err
	}
	if exists {
		return reject(model.Old), nil
	}

	var result model.ProcessResult
	switch b := block.(type) {
	case *model.OpenBlock:
		result, err = p.processOpen(tx, hash, b)
	case *model.SendBlock:
		result, err = p.processSend(tx, hash, b)
	case *model.ReceiveBlock:
		result, err = p.processReceive(tx, hash, b)
	case *model.ChangeBlock:
		result, err = p.processChange(tx, hash, b)
	case *model.StateBlock:
		result, err = p.processState(tx, hash, b)
	default:
		return model.ProcessResult{}, errors.Errorf("ledgerprocessor: unrecognized block type %T", block)
	}
	if err != nil {
		return model.ProcessResult{}, err
	}
	if result.Code == model.Progress {
		log.Debugf("%s block %s accepted for account %s", block.Kind(), hash, result.Account)
	}
	return result, nil
}

func reject(code model.ProcessResultCode) model.ProcessResult {
	return model.ProcessResult{Code: code}
}

// resolveLegacyLink looks previous up in Store for a legacy (non-state)
// block that references it as its previous: whether previous exists at
// all and, if it does, the account that owns it. Legacy blocks carry no
// Account field, so this - not the block itself - is how their signer is
// found; per spec.md's fork-detection note, the caller verifies the
// signature against the returned owner before checking for a successor.
func (p *Processor) resolveLegacyLink(tx model.DBTransaction, previous model.Hash) (owner model.AccountId, found bool, err error) {
	found, err = p.blocks.Has(tx, previous)
	if err != nil || !found {
		return model.ZeroHash, false, err
	}
	_, owner, err = p.blocks.Get(tx, previous)
	if err != nil {
		return model.ZeroHash, false, err
	}
	return owner, true, nil
}

// commitExtension writes the Store mutations common to every accepted
// block that extends an existing chain (legacy Send/Receive/Change, and a
// state block with a nonzero previous): priorInfo into the undo table (so
// Rollback can restore it byte-for-byte later), the block itself, the
// updated AccountInfo, the successor link from previous, the frontier
// move, the checksum insert, and the total-block counter.
func (p *Processor) commitExtension(tx model.DBTransaction, owner model.AccountId, previous, hash model.Hash, block model.Block, priorInfo, info *model.AccountInfo) error {
	if err := p.undo.Put(tx, hash, priorInfo); err != nil {
		return err
	}
	if err := p.accounts.Put(tx, owner, info); err != nil {
		return err
	}
	if err := p.blocks.Put(tx, hash, owner, block); err != nil {
		return err
	}
	if err := p.successor.Put(tx, previous, hash); err != nil {
		return err
	}
	if err := p.frontier.Delete(tx, previous); err != nil {
		return err
	}
	if err := p.frontier.Put(tx, hash, owner); err != nil {
		return err
	}
	if err := p.checksum.Insert(tx, hash); err != nil {
		return err
	}
	return p.meta.IncrementTotalBlocks(tx)
}

// commitOpen writes the Store mutations common to every accepted block
// that opens a new account chain (legacy Open, and a state block whose
// previous is zero): the block itself, the new AccountInfo, the frontier
// entry, the checksum insert, and the total-block counter. There is no
// predecessor to link a successor from or evict from frontier.
func (p *Processor) commitOpen(tx model.DBTransaction, owner, hash model.Hash, block model.Block, info *model.AccountInfo) error {
	if err := p.accounts.Put(tx, owner, info); err != nil {
		return err
	}
	if err := p.blocks.Put(tx, hash, owner, block); err != nil {
		return err
	}
	if err := p.frontier.Put(tx, hash, owner); err != nil {
		return err
	}
	if err := p.checksum.Insert(tx, hash); err != nil {
		return err
	}
	return p.meta.IncrementTotalBlocks(tx)
}

// moveWeight delegates to weight.Index.Adjust, the universal
// representative-weight update for any balance and/or representative
// change.
func (p *Processor) moveWeight(tx model.DBTransaction, oldRep model.AccountId, oldBalance model.Amount, newRep model.AccountId, newBalance model.Amount) error {
	return p.weight.Adjust(tx, oldRep, oldBalance, newRep, newBalance)
}

// consumePending deletes the pending entry at key and records a
// ConsumedRecord/ConsumedByStore pair so the Rollback Engine can both
// restore it later (keyed by the receiving block's own hash) and find
// consumingHash when asked to cascade-undo key.Send (keyed by the send
// hash itself).
func (p *Processor) consumePending(tx model.DBTransaction, consumingHash model.Hash, key model.PendingKey, entry *model.PendingEntry) error {
	if err := p.pending.Delete(tx, key); err != nil {
		return err
	}
	if err := p.consumed.Put(tx, consumingHash, &store.ConsumedRecord{SendHash: key.Send, Entry: *entry}); err != nil {
		return err
	}
	return p.consumedBy.Put(tx, key.Send, consumingHash)
}

func getPending(r model.DBReader, pendingStore store.PendingStore, key model.PendingKey) (*model.PendingEntry, bool, error) {
	entry, err := pendingStore.Get(r, key)
	if err != nil {
		if ledgererrors.IsNotFoundError(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return entry, true, nil
}
