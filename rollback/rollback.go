// Package rollback implements the Rollback Engine: it undoes an accepted
// block and everything built on top of it (spec.md §5), restoring Store
// to the state it would be in had that block never been processed.
// Grounded on the teacher's consensusstatemanager apply/restore-diff
// idiom - Process and Rollback are a matched pair of Store mutations, each
// the other's exact inverse - and on its reorg walk being iterative over
// an explicit worklist rather than recursive, since an adversarial chain
// of sends and receives could otherwise blow the call stack.
package rollback

import (
	"github.com/blocklattice/ledgercore/checksum"
	"github.com/blocklattice/ledgercore/internal/logger"
	"github.com/blocklattice/ledgercore/ledgererrors"
	"github.com/blocklattice/ledgercore/model"
	"github.com/blocklattice/ledgercore/store"
	"github.com/blocklattice/ledgercore/weight"
)

var log = logger.RegisterSubSystem("RLBK")

// Engine is the Rollback component. Like ledgerprocessor.Processor, it
// holds no Store of its own - every operation takes the caller's
// model.DBTransaction - so it shares the same weight.Index and
// checksum.Index a Ledger's Processor uses, keeping both halves of every
// apply/undo pair consistent.
type Engine struct {
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
}

// New returns a Rollback Engine sharing weightIndex and checksumIndex with
// a Ledger's Processor.
func New(weightIndex *weight.Index, checksumIndex *checksum.Index) *Engine {
	return &Engine{weight: weightIndex, checksum: checksumIndex}
}

// Rollback undoes target and every block that was accepted after it on
// the same chain, plus - by the cascade rule - any block on another chain
// that consumed a pending entry target (or one of its successors) created.
// It walks an explicit stack instead of recursing: the top of the stack is
// always the next hash that must be undone before anything else can be.
func (e *Engine) Rollback(tx model.DBTransaction, target model.Hash) error {
	stack := []model.Hash{target}
	for len(stack) > 0 {
		hash := stack[len(stack)-1]

		exists, err := e.blocks.Has(tx, hash)
		if err != nil {
			return err
		}
		if !exists {
			// Already undone as part of a cascade triggered further down
			// the stack.
			stack = stack[:len(stack)-1]
			continue
		}

		block, owner, err := e.blocks.Get(tx, hash)
		if err != nil {
			return err
		}

		info, err := e.accounts.Get(tx, owner)
		if err != nil {
			return err
		}
		if info.Head != hash {
			// hash is buried under later blocks on its own chain; those
			// must come off first.
			stack = append(stack, info.Head)
			continue
		}

		if block.Previous().IsZero() {
			if err := e.undoOpen(tx, owner, hash, block, info); err != nil {
				return err
			}
			log.Debugf("rolled back open block %s for account %s", hash, owner)
			stack = stack[:len(stack)-1]
			continue
		}

		consumer, cascaded, err := e.cascadeTarget(tx, hash)
		if err != nil {
			return err
		}
		if cascaded {
			stack = append(stack, consumer)
			continue
		}

		if err := e.undoExtension(tx, owner, hash, block, info); err != nil {
			return err
		}
		log.Debugf("rolled back %s block %s for account %s", block.Kind(), hash, owner)
		stack = stack[:len(stack)-1]
	}
	return nil
}

// cascadeTarget reports whether hash is a send (legacy or state) whose
// pending entry has already been consumed elsewhere, and if so the hash
// of the block that consumed it - which must be undone first (spec.md's
// cascade rule). consumedBy is only ever populated keyed by a send hash,
// so this is a no-op lookup for every other block kind.
func (e *Engine) cascadeTarget(tx model.DBTransaction, hash model.Hash) (model.Hash, bool, error) {
	consumed, err := e.consumedBy.Has(tx, hash)
	if err != nil {
		return model.ZeroHash, false, err
	}
	if !consumed {
		return model.ZeroHash, false, nil
	}
	consumer, err := e.consumedBy.Get(tx, hash)
	if err != nil {
		return model.ZeroHash, false, err
	}
	return consumer, true, nil
}

// undoOpen undoes an account's sole block: restores any consumed pending
// entry, reverses the weight it credited, and deletes the account
// entirely along with its block/frontier/checksum records.
func (e *Engine) undoOpen(tx model.DBTransaction, owner, hash model.Hash, block model.Block, info *model.AccountInfo) error {
	if err := e.restoreConsumed(tx, owner, hash); err != nil {
		return err
	}
	if !info.Balance.IsZero() {
		if err := e.weight.Sub(tx, info.Representative, info.Balance); err != nil {
			return err
		}
	}
	if err := e.accounts.Delete(tx, owner); err != nil {
		return err
	}
	if err := e.blocks.Delete(tx, hash); err != nil {
		return err
	}
	if err := e.frontier.Delete(tx, hash); err != nil {
		return err
	}
	if err := e.checksum.Remove(tx, hash); err != nil {
		return err
	}
	return e.meta.DecrementTotalBlocks(tx)
}

// undoExtension undoes a block that extended an existing chain: restores
// any consumed pending entry, deletes the pending entry the block itself
// created (if any - guaranteed unconsumed, since cascadeTarget already
// ruled that out), reverses the weight move via the prior AccountInfo
// snapshot, and restores the chain to its state immediately before hash.
func (e *Engine) undoExtension(tx model.DBTransaction, owner, hash model.Hash, block model.Block, info *model.AccountInfo) error {
	priorInfo, err := e.undo.Get(tx, hash)
	if err != nil {
		return err
	}

	if err := e.restoreConsumed(tx, owner, hash); err != nil {
		return err
	}

	if destination, ok := sendDestination(block, priorInfo.Balance, info.Balance); ok {
		if err := e.pending.Delete(tx, model.PendingKey{Destination: destination, Send: hash}); err != nil {
			return err
		}
	}

	if err := e.weight.Adjust(tx, info.Representative, info.Balance, priorInfo.Representative, priorInfo.Balance); err != nil {
		return err
	}

	previous := block.Previous()
	if err := e.accounts.Put(tx, owner, priorInfo); err != nil {
		return err
	}
	if err := e.blocks.Delete(tx, hash); err != nil {
		return err
	}
	if err := e.successor.Delete(tx, previous); err != nil {
		return err
	}
	if err := e.frontier.Delete(tx, hash); err != nil {
		return err
	}
	if err := e.frontier.Put(tx, previous, owner); err != nil {
		return err
	}
	if err := e.checksum.Remove(tx, hash); err != nil {
		return err
	}
	if err := e.undo.Delete(tx, hash); err != nil {
		return err
	}
	return e.meta.DecrementTotalBlocks(tx)
}

// restoreConsumed puts back the PendingEntry hash consumed when it was
// applied, if it consumed one at all (a Receive/Open, or a state block
// taking the receive path).
func (e *Engine) restoreConsumed(tx model.DBTransaction, owner, hash model.Hash) error {
	record, err := e.consumed.Get(tx, hash)
	if err != nil {
		if ledgererrors.IsNotFoundError(err) {
			return nil
		}
		return err
	}
	if err := e.pending.Put(tx, model.PendingKey{Destination: owner, Send: record.SendHash}, &record.Entry); err != nil {
		return err
	}
	if err := e.consumed.Delete(tx, hash); err != nil {
		return err
	}
	return e.consumedBy.Delete(tx, record.SendHash)
}

// sendDestination reports the destination a send-creating block filed its
// pending entry under, and whether block created one at all: always true
// for a legacy Send, true for a State block only when its balance strictly
// decreased relative to priorBalance (spec.md §4.1 - a state continuation
// with an unchanged or increased balance never creates a pending entry).
func sendDestination(block model.Block, priorBalance, currentBalance model.Amount) (model.AccountId, bool) {
	switch b := block.(type) {
	case *model.SendBlock:
		return b.Destination, true
	case *model.StateBlock:
		if currentBalance.Cmp(priorBalance) < 0 {
			return b.Link, true
		}
	}
	return model.ZeroHash, false
}
