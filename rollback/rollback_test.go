package rollback

import (
	"testing"

	"golang.org/x/crypto/ed25519"

	"github.com/blocklattice/ledgercore/checksum"
	"github.com/blocklattice/ledgercore/genesis"
	"github.com/blocklattice/ledgercore/ledgererrors"
	"github.com/blocklattice/ledgercore/ledgerprocessor"
	"github.com/blocklattice/ledgercore/model"
	"github.com/blocklattice/ledgercore/store"
	"github.com/blocklattice/ledgercore/store/memstore"
	"github.com/blocklattice/ledgercore/weight"
)

type testAccount struct {
	id   model.AccountId
	priv ed25519.PrivateKey
}

func newTestAccount(t *testing.T) testAccount {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	var id model.AccountId
	copy(id[:], pub)
	return testAccount{id: id, priv: priv}
}

func (a testAccount) sign(message []byte) model.Signature {
	var sig model.Signature
	copy(sig[:], ed25519.Sign(a.priv, message))
	return sig
}

func newHarness() (*ledgerprocessor.Processor, *Engine, model.DBManager) {
	w := weight.New()
	c := checksum.New()
	params := genesis.Params{WorkThreshold: 0}
	return ledgerprocessor.New(params, w, c), New(w, c), memstore.New()
}

func mustBegin(t *testing.T, db model.DBManager) model.DBTransaction {
	t.Helper()
	tx, err := db.Begin(true)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	return tx
}

func seedPending(t *testing.T, db model.DBManager, key model.PendingKey, entry *model.PendingEntry) {
	t.Helper()
	tx := mustBegin(t, db)
	if err := (store.PendingStore{}).Put(tx, key, entry); err != nil {
		t.Fatalf("seed pending: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit seed: %v", err)
	}
}

// TestRollbackSendUndoesPendingAndWeight covers spec.md §8's S1: rolling
// back a lone send restores the sender's prior balance/weight and deletes
// the pending entry it created, as though the send had never happened.
func TestRollbackSendUndoesPendingAndWeight(t *testing.T) {
	proc, eng, db := newHarness()
	sender := newTestAccount(t)
	receiver := newTestAccount(t)

	seedPending(t, db, model.PendingKey{Destination: sender.id, Send: model.Hash{0x01}},
		&model.PendingEntry{Source: sender.id, Amount: model.AmountFromUint64(1000), Epoch: model.Epoch0})

	open := &model.OpenBlock{Source: model.Hash{0x01}, Representative: sender.id, Account: sender.id}
	open.Sig = sender.sign(open.SigningMessage())
	tx := mustBegin(t, db)
	if _, err := proc.Process(tx, open); err != nil {
		t.Fatalf("process open: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit open: %v", err)
	}
	openHash := model.BlockHash(open)

	send := &model.SendBlock{PreviousHash: openHash, Destination: receiver.id, Balance: model.AmountFromUint64(400)}
	send.Sig = sender.sign(send.SigningMessage())
	tx = mustBegin(t, db)
	result, err := proc.Process(tx, send)
	if err != nil {
		t.Fatalf("process send: %v", err)
	}
	if result.Code != model.Progress {
		t.Fatalf("send: want Progress, got %s", result.Code)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit send: %v", err)
	}
	sendHash := model.BlockHash(send)

	tx = mustBegin(t, db)
	if err := eng.Rollback(tx, sendHash); err != nil {
		t.Fatalf("rollback send: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit rollback: %v", err)
	}

	tx = mustBegin(t, db)
	defer func() { _ = tx.Rollback() }()

	info, err := (store.AccountStore{}).Get(tx, sender.id)
	if err != nil {
		t.Fatalf("get sender info: %v", err)
	}
	if info.Balance.Cmp(model.AmountFromUint64(1000)) != 0 {
		t.Fatalf("sender balance after rollback: want 1000, got %s", info.Balance.BigInt())
	}
	if info.Head != openHash {
		t.Fatalf("sender head after rollback: want open hash, got %s", info.Head)
	}

	if exists, _ := (store.BlockStore{}).Has(tx, sendHash); exists {
		t.Fatalf("send block still present after rollback")
	}

	destKey := model.PendingKey{Destination: receiver.id, Send: sendHash}
	if _, err := (store.PendingStore{}).Get(tx, destKey); !ledgererrors.IsNotFoundError(err) {
		t.Fatalf("pending entry created by send should be gone, got err=%v", err)
	}

	w := weight.New()
	weightAfter, err := w.Weight(tx, 0, sender.id)
	if err != nil {
		t.Fatalf("weight: %v", err)
	}
	if weightAfter.Cmp(model.AmountFromUint64(1000)) != 0 {
		t.Fatalf("sender weight after rollback: want 1000, got %s", weightAfter.BigInt())
	}
}

// TestRollbackCascadesThroughConsumedSend covers spec.md §8's S6: rolling
// back a send whose pending entry has already been consumed by a receive
// on another chain must first undo that receive, then the send, even
// though the caller only named the send.
func TestRollbackCascadesThroughConsumedSend(t *testing.T) {
	proc, eng, db := newHarness()
	sender := newTestAccount(t)
	receiver := newTestAccount(t)

	seedPending(t, db, model.PendingKey{Destination: sender.id, Send: model.Hash{0x02}},
		&model.PendingEntry{Source: sender.id, Amount: model.AmountFromUint64(1000), Epoch: model.Epoch0})

	open := &model.OpenBlock{Source: model.Hash{0x02}, Representative: sender.id, Account: sender.id}
	open.Sig = sender.sign(open.SigningMessage())
	tx := mustBegin(t, db)
	if _, err := proc.Process(tx, open); err != nil {
		t.Fatalf("process open: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit open: %v", err)
	}
	openHash := model.BlockHash(open)

	send := &model.SendBlock{PreviousHash: openHash, Destination: receiver.id, Balance: model.AmountFromUint64(400)}
	send.Sig = sender.sign(send.SigningMessage())
	tx = mustBegin(t, db)
	if _, err := proc.Process(tx, send); err != nil {
		t.Fatalf("process send: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit send: %v", err)
	}
	sendHash := model.BlockHash(send)

	receiveOpen := &model.OpenBlock{Source: sendHash, Representative: receiver.id, Account: receiver.id}
	receiveOpen.Sig = receiver.sign(receiveOpen.SigningMessage())
	tx = mustBegin(t, db)
	result, err := proc.Process(tx, receiveOpen)
	if err != nil {
		t.Fatalf("process receive-open: %v", err)
	}
	if result.Code != model.Progress {
		t.Fatalf("receive-open: want Progress, got %s", result.Code)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit receive-open: %v", err)
	}
	receiveOpenHash := model.BlockHash(receiveOpen)

	tx = mustBegin(t, db)
	if err := eng.Rollback(tx, sendHash); err != nil {
		t.Fatalf("rollback send: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit rollback: %v", err)
	}

	tx = mustBegin(t, db)
	defer func() { _ = tx.Rollback() }()

	if exists, _ := (store.BlockStore{}).Has(tx, receiveOpenHash); exists {
		t.Fatalf("cascaded receive-open block still present after rollback")
	}
	if exists, _ := (store.BlockStore{}).Has(tx, sendHash); exists {
		t.Fatalf("send block still present after rollback")
	}
	if opened, _ := (store.AccountStore{}).Has(tx, receiver.id); opened {
		t.Fatalf("receiver account should no longer exist after cascade rollback")
	}

	info, err := (store.AccountStore{}).Get(tx, sender.id)
	if err != nil {
		t.Fatalf("get sender info: %v", err)
	}
	if info.Balance.Cmp(model.AmountFromUint64(1000)) != 0 {
		t.Fatalf("sender balance after cascade rollback: want 1000, got %s", info.Balance.BigInt())
	}
	if info.Head != openHash {
		t.Fatalf("sender head after cascade rollback: want open hash, got %s", info.Head)
	}
}
