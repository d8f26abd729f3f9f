// Package weight implements the representative delegated-weight index,
// spec.md §4.3: a running per-representative balance total, maintained by
// every Ledger Processor and Rollback Engine mutation, with an optional
// bootstrap override for early-chain weight reporting before enough blocks
// have been processed for the tracked totals to be meaningful. Grounded on
// the teacher's domain/consensus/processes/blockvalidator apply-then-query
// idiom (a thin typed wrapper around a Store table, with add/sub as the
// only mutators) adapted from UTXO-diff bookkeeping to a single running
// total per account.
package weight

import (
	"github.com/blocklattice/ledgercore/model"
	"github.com/blocklattice/ledgercore/store"
)

// Index is the weight component. Like checksum.Index, it holds no
// in-memory state beyond its bootstrap configuration - every mutation goes
// through the caller's transaction - so a Ledger's weight.Index is safe to
// share across goroutines driving different transactions as long as
// Store's single-writer discipline is respected.
type Index struct {
	representation store.RepresentationStore

	bootstrapWeightMaxBlocks uint64
	bootstrapWeights         map[model.AccountId]model.Amount
}

// New returns a weight Index with no bootstrap override.
func New() *Index {
	return &Index{}
}

// NewWithBootstrap returns a weight Index configured with spec.md §4.3's
// bootstrap-weight override: while the ledger's total processed block
// count is below maxBlocks, Weight returns overrides[account] in place of
// the tracked value whenever an override is present for that account.
func NewWithBootstrap(maxBlocks uint64, overrides map[model.AccountId]model.Amount) *Index {
	return &Index{bootstrapWeightMaxBlocks: maxBlocks, bootstrapWeights: overrides}
}

// Weight returns account's current delegated weight. totalBlockCount is
// the ledger-wide block count (sum of every account's AccountInfo.
// BlockCount) the bootstrap override is gated on; the per-resolution
// decision in DESIGN.md treats the gate as total < bootstrapWeightMaxBlocks
// (strict less-than - once the threshold is reached, overrides are
// ignored forever, matching spec.md §4.3's "once total count reaches the
// threshold" wording).
func (idx *Index) Weight(r model.DBReader, totalBlockCount uint64, account model.AccountId) (model.Amount, error) {
	if idx.bootstrapWeights != nil && totalBlockCount < idx.bootstrapWeightMaxBlocks {
		if override, ok := idx.bootstrapWeights[account]; ok {
			return override, nil
		}
	}
	return idx.representation.Get(r, account)
}

// Add credits amount to account's tracked weight. Processor call sites use
// this when a receive, open, or representative change moves weight onto
// account.
func (idx *Index) Add(tx model.DBTransaction, account model.AccountId, amount model.Amount) error {
	if amount.IsZero() {
		return nil
	}
	current, err := idx.representation.Get(tx, account)
	if err != nil {
		return err
	}
	return idx.representation.Put(tx, account, current.Add(amount))
}

// Sub debits amount from account's tracked weight. Processor call sites use
// this when a send or representative change moves weight off of account.
// Callers must ensure account's tracked weight is >= amount; the ledger's
// invariants guarantee this holds for every reachable call (I4).
func (idx *Index) Sub(tx model.DBTransaction, account model.AccountId, amount model.Amount) error {
	if amount.IsZero() {
		return nil
	}
	current, err := idx.representation.Get(tx, account)
	if err != nil {
		return err
	}
	return idx.representation.Put(tx, account, current.Sub(amount))
}

// Move atomically subtracts amount from from and adds it to to - the
// Change block and State representative-change handlers' single weight
// mutation (spec.md §4.1).
func (idx *Index) Move(tx model.DBTransaction, from, to model.AccountId, amount model.Amount) error {
	if from == to || amount.IsZero() {
		return nil
	}
	if err := idx.Sub(tx, from, amount); err != nil {
		return err
	}
	return idx.Add(tx, to, amount)
}

// Adjust is the universal weight update for any balance and/or
// representative change: oldRep loses oldBalance, newRep gains newBalance.
// Every combination a state continuation block can express - send,
// receive, representative change, or any mix of the two - reduces to one
// call of this method; its exact reverse is the same call with the old
// and new arguments swapped, which is what makes the Rollback Engine's
// undo uniform across block kinds instead of needing its own per-kind
// weight logic.
func (idx *Index) Adjust(tx model.DBTransaction, oldRep model.AccountId, oldBalance model.Amount, newRep model.AccountId, newBalance model.Amount) error {
	if oldRep == newRep {
		switch newBalance.Cmp(oldBalance) {
		case 0:
			return nil
		case 1:
			return idx.Add(tx, newRep, newBalance.Sub(oldBalance))
		default:
			return idx.Sub(tx, oldRep, oldBalance.Sub(newBalance))
		}
	}
	if err := idx.Sub(tx, oldRep, oldBalance); err != nil {
		return err
	}
	if newBalance.IsZero() {
		return nil
	}
	return idx.Add(tx, newRep, newBalance)
}
