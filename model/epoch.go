package model

// Epoch identifies the cryptographic/consensus generation an account's
// chain has been upgraded to. Epoch 0 is every account's starting epoch;
// higher epochs are reached one at a time via an epoch block (see
// ledgerprocessor's state-block handling).
type Epoch uint8

const (
	// Epoch0 is the original ed25519 legacy epoch: Open/Send/Receive/Change
	// blocks and state blocks are both accepted.
	Epoch0 Epoch = iota
	// Epoch1 is reached by an epoch-upgrade state block signed by
	// EpochSigner; once reached, only state blocks are accepted on that
	// account's chain (I6).
	Epoch1
)

// EpochInfo names the signer key and link sentinel that authorize an
// upgrade to a given epoch. Modeled as a small table (rather than two
// hardcoded constants) the way the teacher bundles network-wide constants
// into one Params struct, so a future epoch can be added by appending a
// row instead of branching code.
type EpochInfo struct {
	Epoch     Epoch
	Signer    AccountId
	LinkValue Hash
}
