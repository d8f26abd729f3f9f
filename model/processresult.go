package model

// ProcessResultCode is the closed set of outcomes the Ledger Processor can
// return for a candidate block (spec.md §4.1). Order here is declaration
// order only; precedence among checks is encoded in ledgerprocessor, not in
// this ordinal.
type ProcessResultCode int

const (
	// Progress means the block was valid and has been applied to the
	// ledger.
	Progress ProcessResultCode = iota
	// Old means an identical block already exists in the store.
	Old
	// BadSignature means the block's signature does not verify.
	BadSignature
	// NegativeSpend means a legacy send's new balance is not strictly
	// less than its previous balance.
	NegativeSpend
	// Fork means previous already has a successor different from this
	// block (or, for an open, the account is already opened by a
	// different block).
	Fork
	// Unreceivable means the referenced pending entry doesn't exist, or
	// exists at the wrong epoch for the receiving block's kind.
	Unreceivable
	// GapPrevious means the block's previous does not exist yet.
	GapPrevious
	// GapSource means the block's source send has not been seen yet.
	GapSource
	// OpenedBurnAccount means an epoch-upgrade open for a zero-balance
	// account specified a nonzero representative or balance.
	OpenedBurnAccount
	// BalanceMismatch means a state receive's balance delta does not
	// equal the pending entry's amount.
	BalanceMismatch
	// RepresentativeMismatch means an epoch-upgrade state block changed
	// the representative, which epoch upgrades must never do.
	RepresentativeMismatch
	// BlockPosition means a legacy block kind was submitted against an
	// account whose chain tip is already a state block (or already
	// epoch-upgraded).
	BlockPosition
	// InsufficientWork means the block's Work does not meet the
	// proof-of-work threshold for its Root.
	InsufficientWork
)

var processResultCodeNames = [...]string{
	"progress", "old", "bad_signature", "negative_spend", "fork",
	"unreceivable", "gap_previous", "gap_source", "opened_burn_account",
	"balance_mismatch", "representative_mismatch", "block_position",
	"insufficient_work",
}

func (c ProcessResultCode) String() string {
	if int(c) < 0 || int(c) >= len(processResultCodeNames) {
		return "unknown"
	}
	return processResultCodeNames[c]
}

// ProcessResult is returned by ledgerprocessor.Process for every candidate
// block. Account and Amount are populated on Progress; some non-Progress
// codes populate Account too, at the implementer's discretion per
// spec.md §7.
type ProcessResult struct {
	Code    ProcessResultCode
	Account AccountId
	Amount  Amount
	Pending *PendingEntry
}
