// Package election implements the Election Tally: an in-memory, per-root
// vote tally over blocks sharing an election root (spec.md §4.5).
// Grounded on the teacher's general concurrency idiom for a long-lived
// consensus component - one mutex-guarded manager struct constructed via
// New(...), no package-level singletons (matching every manager under
// domain/consensus/processes/*) - since kaspad has no direct analogue of a
// per-root vote tally at this layer.
package election

import (
	"sort"
	"sync"
	"time"

	"github.com/blocklattice/ledgercore/internal/logger"
	"github.com/blocklattice/ledgercore/model"
	"github.com/blocklattice/ledgercore/sigwork"
	"github.com/blocklattice/ledgercore/store"
	"github.com/blocklattice/ledgercore/weight"
)

var log = logger.RegisterSubSystem("ELEC")

// voterRecord is one voter's last recorded vote within an election
// (spec.md §3's last_votes entry).
type voterRecord struct {
	hash     model.Hash
	sequence model.Sequence
	time     int64
}

// electionState is the in-memory tally context for blocks sharing a root
// (spec.md §3's Election).
type electionState struct {
	lastVotes map[model.AccountId]voterRecord
	blocks    map[model.Hash]struct{}
}

// Tally holds every in-flight election, keyed by root. It is the only
// ledger component whose state lives outside Store (spec.md §5) - guarded
// by its own mutex rather than Store's single-writer transaction
// discipline, since votes arrive and are tallied independently of block
// processing.
type Tally struct {
	mu         sync.Mutex
	elections  map[model.Hash]*electionState
	weight     *weight.Index
	meta       store.MetaStore
	cooldown   time.Duration
	now        func() int64
}

// New returns an empty Tally. cooldown is the minimum time a voter must
// wait before changing their vote within one election (spec.md §4.5: ~15s).
func New(weightIndex *weight.Index, cooldown time.Duration) *Tally {
	return &Tally{
		elections: make(map[model.Hash]*electionState),
		weight:    weightIndex,
		cooldown:  cooldown,
		now:       func() int64 { return time.Now().Unix() },
	}
}

func (t *Tally) stateFor(root model.Hash) *electionState {
	state, ok := t.elections[root]
	if !ok {
		state = &electionState{
			lastVotes: make(map[model.AccountId]voterRecord),
			blocks:    make(map[model.Hash]struct{}),
		}
		t.elections[root] = state
	}
	return state
}

// Start registers block as a candidate in the election for its root,
// creating the election if this is the first block seen for that root.
// owner is the block's own account (spec.md's "voter_of_block") - its
// placeholder last_votes entry, keyed to a sentinel hash that never
// matches any real candidate, exists solely so last_votes is never empty
// before any external vote arrives; it contributes no weight to any
// candidate at tally time.
func (t *Tally) Start(block model.Block, owner model.AccountId) model.Hash {
	root := block.Root()
	hash := model.BlockHash(block)

	t.mu.Lock()
	defer t.mu.Unlock()

	state := t.stateFor(root)
	if _, exists := state.lastVotes[owner]; !exists {
		state.lastVotes[owner] = voterRecord{hash: model.ZeroHash, sequence: 0, time: t.now()}
	}
	state.blocks[hash] = struct{}{}
	return root
}

// Vote records vote against the election for root, creating the election
// if it does not yet exist (a vote may arrive before Start, e.g. after a
// restart). Returns the closed VoteCode outcome set spec.md §4.5 defines.
func (t *Tally) Vote(root model.Hash, vote model.Vote) model.VoteCode {
	if !sigwork.VerifySignature(vote.Voter, vote.SigningMessage(), vote.Signature) {
		return model.VoteInvalid
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	state := t.stateFor(root)
	now := t.now()

	rec, exists := state.lastVotes[vote.Voter]
	if exists {
		if vote.Sequence <= rec.sequence {
			// Either a byte-for-byte replay, or a lower-sequence vote for
			// a different block - spec.md §4.5 treats both as ignored.
			return model.VoteReplay
		}
		if vote.BlockHash != rec.hash && now-rec.time < int64(t.cooldown/time.Second) {
			// Changing vote before the cooldown elapses is ignored;
			// re-affirming the same hash at a higher sequence is not
			// subject to the cooldown.
			return model.VoteReplay
		}
	}

	state.lastVotes[vote.Voter] = voterRecord{hash: vote.BlockHash, sequence: vote.Sequence, time: now}
	state.blocks[vote.BlockHash] = struct{}{}
	log.Debugf("vote %d for %s accepted in election %s", vote.Sequence, vote.BlockHash, root)
	return model.VoteAccepted
}

// Tally returns every candidate block registered for root, ordered by
// total representative weight (highest first, ties broken by ascending
// block hash for determinism). A voter with no recorded vote, or whose
// last vote names a hash outside root's candidate set, contributes no
// weight to any returned entry.
func (t *Tally) Tally(r model.DBReader, root model.Hash) ([]model.WeightedBlock, error) {
	t.mu.Lock()
	state, ok := t.elections[root]
	if !ok {
		t.mu.Unlock()
		return nil, nil
	}
	blocks := make([]model.Hash, 0, len(state.blocks))
	for h := range state.blocks {
		blocks = append(blocks, h)
	}
	votes := make(map[model.AccountId]model.Hash, len(state.lastVotes))
	for voter, rec := range state.lastVotes {
		votes[voter] = rec.hash
	}
	t.mu.Unlock()

	totalBlocks, err := t.meta.TotalBlocks(r)
	if err != nil {
		return nil, err
	}

	weights := make(map[model.Hash]model.Amount, len(blocks))
	for _, h := range blocks {
		weights[h] = model.ZeroAmount
	}
	for voter, hash := range votes {
		if _, candidate := weights[hash]; !candidate {
			continue
		}
		w, err := t.weight.Weight(r, totalBlocks, voter)
		if err != nil {
			return nil, err
		}
		weights[hash] = weights[hash].Add(w)
	}

	result := make([]model.WeightedBlock, 0, len(weights))
	for h, w := range weights {
		result = append(result, model.WeightedBlock{BlockHash: h, Weight: w})
	}
	sort.Slice(result, func(i, j int) bool {
		if cmp := result[i].Weight.Cmp(result[j].Weight); cmp != 0 {
			return cmp > 0
		}
		return result[i].BlockHash.Less(result[j].BlockHash)
	})
	return result, nil
}

// Forget discards all in-memory state for root, called once a block from
// that election has been confirmed and applied via ledgerprocessor - the
// election no longer needs to track competing votes for a root that is no
// longer contested.
func (t *Tally) Forget(root model.Hash) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.elections, root)
}
