// Package ledgercore wires the Store, Ledger Processor, Rollback Engine,
// Weight Index, Checksum, and Election Tally components into the single
// Ledger entry point an embedding application drives (spec.md §1).
// Grounded on the teacher's domain/domain.go: one top-level struct
// constructed once via New(...), holding every manager/process by
// reference and exposing no package-level state of its own.
package ledgercore

import (
	"time"

	"github.com/blocklattice/ledgercore/checksum"
	"github.com/blocklattice/ledgercore/election"
	"github.com/blocklattice/ledgercore/genesis"
	"github.com/blocklattice/ledgercore/internal/logger"
	"github.com/blocklattice/ledgercore/ledgerprocessor"
	"github.com/blocklattice/ledgercore/model"
	"github.com/blocklattice/ledgercore/rollback"
	"github.com/blocklattice/ledgercore/store"
	"github.com/blocklattice/ledgercore/weight"
)

var log = logger.RegisterSubSystem("LDGR")

// Config bundles everything a Ledger needs to construct its components:
// network genesis parameters plus the bootstrap-weight override and
// election cooldown spec.md §4.3/§4.5 leave to the embedding application
// to choose. No flag parsing or file loading happens here - that remains
// a Non-goal, consistent with the CLI/config Non-goal the distilled spec
// names.
type Config struct {
	Params genesis.Params
}

// Ledger is the single entry point spec.md §1 describes: a Ledger
// Processor for validating and applying candidate blocks, a Rollback
// Engine for undoing them, and an Election Tally for out-of-band vote
// accounting - sharing one weight.Index and one checksum.Index so both
// halves of every apply/undo pair stay consistent.
type Ledger struct {
	config Config

	processor *ledgerprocessor.Processor
	rollback  *rollback.Engine
	election  *election.Tally

	weight   *weight.Index
	checksum *checksum.Index

	accounts store.AccountStore
	blocks   store.BlockStore
	frontier store.FrontierStore
	meta     store.MetaStore
}

// New constructs a Ledger from config. It does not touch Store itself -
// callers seed a fresh Store with InitializeGenesis before processing any
// other block.
func New(config Config) *Ledger {
	var weightIndex *weight.Index
	if config.Params.BootstrapWeights != nil {
		weightIndex = weight.NewWithBootstrap(config.Params.BootstrapWeightMaxBlocks, config.Params.BootstrapWeights)
	} else {
		weightIndex = weight.New()
	}
	checksumIndex := checksum.New()

	cooldown := time.Duration(config.Params.ElectionCooldownSeconds) * time.Second
	if cooldown <= 0 {
		cooldown = 15 * time.Second
	}

	log.Infof("ledger constructed: genesis account %s, %d epochs", config.Params.GenesisAccount, len(config.Params.Epochs))

	return &Ledger{
		config:    config,
		processor: ledgerprocessor.New(config.Params, weightIndex, checksumIndex),
		rollback:  rollback.New(weightIndex, checksumIndex),
		election:  election.New(weightIndex, cooldown),
		weight:    weightIndex,
		checksum:  checksumIndex,
	}
}

// InitializeGenesis writes the network's fixed genesis Open block directly
// into Store: account, frontier, weight, and checksum, all pre-populated
// rather than derived by running the block through Process (spec.md §3's
// "initialization pre-populates account, frontier, weight, checksum" -
// genesis never consumes a pending entry the way an ordinary Open must,
// so it cannot go through the normal Ledger Processor open path). Callers
// run this once, before processing any other block against a fresh Store.
func (l *Ledger) InitializeGenesis(tx model.DBTransaction) error {
	params := l.config.Params
	block := params.Block()
	hash := params.Hash()
	account := params.GenesisAccount

	info := &model.AccountInfo{
		Head:           hash,
		OpenBlock:      hash,
		RepBlock:       hash,
		Balance:        params.TotalSupply,
		BlockCount:     1,
		Epoch:          params.BaseEpoch(),
		Representative: account,
	}
	if err := l.accounts.Put(tx, account, info); err != nil {
		return err
	}
	if err := l.blocks.Put(tx, hash, account, block); err != nil {
		return err
	}
	if err := l.frontier.Put(tx, hash, account); err != nil {
		return err
	}
	if err := l.weight.Add(tx, account, params.TotalSupply); err != nil {
		return err
	}
	if err := l.checksum.Insert(tx, hash); err != nil {
		return err
	}
	log.Infof("genesis initialized: account %s, supply %s", account, params.TotalSupply.BigInt())
	return l.meta.IncrementTotalBlocks(tx)
}

// Process validates and, on success, applies block within tx (spec.md
// §4.1).
func (l *Ledger) Process(tx model.DBTransaction, block model.Block) (model.ProcessResult, error) {
	return l.processor.Process(tx, block)
}

// Rollback undoes hash and everything built on top of it within tx
// (spec.md §4.2).
func (l *Ledger) Rollback(tx model.DBTransaction, hash model.Hash) error {
	return l.rollback.Rollback(tx, hash)
}

// StartElection registers block as a candidate in the election for its
// root, owned by owner (spec.md §4.5).
func (l *Ledger) StartElection(block model.Block, owner model.AccountId) model.Hash {
	return l.election.Start(block, owner)
}

// Vote records vote against the election for root (spec.md §4.5).
func (l *Ledger) Vote(root model.Hash, vote model.Vote) model.VoteCode {
	return l.election.Vote(root, vote)
}

// Tally returns root's candidates ordered by total representative weight
// (spec.md §4.5). Once a winner is confirmed via Process, callers should
// call ForgetElection to release the in-memory tally state.
func (l *Ledger) Tally(r model.DBReader, root model.Hash) ([]model.WeightedBlock, error) {
	return l.election.Tally(r, root)
}

// ForgetElection discards in-memory tally state for root.
func (l *Ledger) ForgetElection(root model.Hash) {
	l.election.Forget(root)
}

// Checksum returns the ledger-wide checksum over every block hash
// currently in Store (spec.md §4.4, invariant P5).
func (l *Ledger) Checksum(r model.DBReader) (model.Hash, error) {
	return l.checksum.Full(r)
}

// Weight returns account's current delegated voting weight (spec.md
// §4.3).
func (l *Ledger) Weight(r model.DBReader, totalBlockCount uint64, account model.AccountId) (model.Amount, error) {
	return l.weight.Weight(r, totalBlockCount, account)
}
