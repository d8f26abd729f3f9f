// Package genesis defines the fixed Open block every ledger bootstraps
// from, and the parameter bundle (epoch signers) the Ledger Processor
// consults for epoch upgrades. Grounded on the teacher's domain/dagconfig
// genesis.go: a small set of package-level constants describing the one
// block that predates any Store content, plus a Params-style bundle
// (dagconfig.Params) of network-wide constants.
package genesis

import (
	"github.com/blocklattice/ledgercore/model"
)

// Params bundles the constants a Ledger needs before it can process its
// first non-genesis block: the genesis account and its opening block, and
// the epoch table used to validate State block epoch upgrades (spec.md's
// I6).
type Params struct {
	// GenesisAccount is both the account and representative of the
	// network's first block, and the source of the total supply.
	GenesisAccount model.AccountId

	// GenesisSignature is the signature over the genesis Open block's
	// SigningMessage, produced by GenesisAccount's private key.
	GenesisSignature model.Signature

	// GenesisWork is a work value meeting the network's work threshold
	// for GenesisAccount as root.
	GenesisWork model.Work

	// TotalSupply is the balance the genesis Open block establishes.
	TotalSupply model.Amount

	// Epochs is the ordered epoch table, lowest epoch first, State
	// blocks upgrade an account across per spec.md §3's "epoch(A)"
	// notion. Epochs[0] is always the network's base epoch.
	Epochs []model.EpochInfo

	// WorkThreshold is the minimum work value sigwork.CheckWork requires
	// of every block passed to the Ledger Processor.
	WorkThreshold uint64

	// BootstrapWeightMaxBlocks and BootstrapWeights implement spec.md
	// §4.3's bootstrap-weight override: while the ledger's total block
	// count is below BootstrapWeightMaxBlocks, weight.Index.Weight
	// returns BootstrapWeights[account] in place of the tracked value,
	// when present.
	BootstrapWeightMaxBlocks uint64
	BootstrapWeights         map[model.AccountId]model.Amount

	// ElectionCooldownSeconds is the minimum time an election.Tally must
	// wait since a voter's last vote before accepting a changed vote
	// from that same voter (spec.md §4.5).
	ElectionCooldownSeconds int64
}

// Block returns the fixed Open block every ledger with these Params starts
// from: GenesisAccount opening its own chain, representing itself, sourced
// from itself, holding TotalSupply.
func (p Params) Block() *model.OpenBlock {
	return &model.OpenBlock{
		Source:         p.GenesisAccount,
		Representative: p.GenesisAccount,
		Account:        p.GenesisAccount,
		Sig:            p.GenesisSignature,
		W:              p.GenesisWork,
	}
}

// Hash returns the canonical hash of the genesis Open block.
func (p Params) Hash() model.Hash {
	return model.BlockHash(p.Block())
}

// BaseEpoch returns the network's initial epoch, Epochs[0].
func (p Params) BaseEpoch() model.Epoch {
	if len(p.Epochs) == 0 {
		return model.Epoch0
	}
	return p.Epochs[0].Epoch
}

// NextEpoch returns the EpochInfo one step above current, and whether a
// next epoch exists. Epochs must be listed in Params.Epochs in ascending
// order for this to hold.
func (p Params) NextEpoch(current model.Epoch) (model.EpochInfo, bool) {
	for i, info := range p.Epochs {
		if info.Epoch == current && i+1 < len(p.Epochs) {
			return p.Epochs[i+1], true
		}
	}
	return model.EpochInfo{}, false
}

// EpochForLink returns the EpochInfo whose LinkValue matches link, and
// whether one was found. A state block whose link equals an epoch's
// LinkValue is an epoch-upgrade candidate; it only actually is one once
// ledgerprocessor also confirms the block was signed by that EpochInfo's
// Signer (spec.md §4.1's "If signer is not the epoch signer, treat link as
// a receive source").
func (p Params) EpochForLink(link model.Hash) (model.EpochInfo, bool) {
	for _, info := range p.Epochs {
		if info.LinkValue == link {
			return info, true
		}
	}
	return model.EpochInfo{}, false
}
