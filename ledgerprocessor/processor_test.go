package ledgerprocessor

import (
	"testing"

	"golang.org/x/crypto/ed25519"

	"github.com/blocklattice/ledgercore/checksum"
	"github.com/blocklattice/ledgercore/genesis"
	"github.com/blocklattice/ledgercore/model"
	"github.com/blocklattice/ledgercore/store"
	"github.com/blocklattice/ledgercore/store/memstore"
	"github.com/blocklattice/ledgercore/weight"
)

// testAccount is a generated keypair plus its AccountId, for building and
// signing blocks in tests without a real work generator (threshold 0 makes
// every work value valid).
type testAccount struct {
	id  model.AccountId
	pub ed25519.PublicKey
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
	return testAccount{id: id, pub: pub, priv: priv}
}

func (a testAccount) sign(message []byte) model.Signature {
	var sig model.Signature
	copy(sig[:], ed25519.Sign(a.priv, message))
	return sig
}

func newTestProcessor() (*Processor, model.DBManager) {
	params := genesis.Params{WorkThreshold: 0}
	p := New(params, weight.New(), checksum.New())
	return p, memstore.New()
}

func mustBegin(t *testing.T, db model.DBManager) model.DBTransaction {
	t.Helper()
	tx, err := db.Begin(true)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	return tx
}

func TestProcessOpenAndSendAndReceive(t *testing.T) {
	p, db := newTestProcessor()
	sender := newTestAccount(t)
	receiver := newTestAccount(t)

	// Seed a pending entry for sender's open, as if an earlier send had
	// created it (there is no genesis chain in this test - the pending
	// entry is injected directly).
	tx := mustBegin(t, db)
	openKey := model.PendingKey{Destination: sender.id, Send: model.Hash{0xaa}}
	if err := (store.PendingStore{}).Put(tx, openKey, &model.PendingEntry{Source: sender.id, Amount: model.AmountFromUint64(1000), Epoch: model.Epoch0}); err != nil {
		t.Fatalf("seed pending: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit seed: %v", err)
	}

	open := &model.OpenBlock{Source: openKey.Send, Representative: sender.id, Account: sender.id}
	open.Sig = sender.sign(open.SigningMessage())

	tx = mustBegin(t, db)
	result, err := p.Process(tx, open)
	if err != nil {
		t.Fatalf("process open: %v", err)
	}
	if result.Code != model.Progress {
		t.Fatalf("open: want Progress, got %s", result.Code)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit open: %v", err)
	}
	openHash := model.BlockHash(open)

	send := &model.SendBlock{PreviousHash: openHash, Destination: receiver.id, Balance: model.AmountFromUint64(400)}
	send.Sig = sender.sign(send.SigningMessage())

	tx = mustBegin(t, db)
	result, err = p.Process(tx, send)
	if err != nil {
		t.Fatalf("process send: %v", err)
	}
	if result.Code != model.Progress {
		t.Fatalf("send: want Progress, got %s", result.Code)
	}
	if result.Amount.Cmp(model.AmountFromUint64(600)) != 0 {
		t.Fatalf("send: want amount 600, got %s", result.Amount.BigInt())
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit send: %v", err)
	}
	sendHash := model.BlockHash(send)

	receiveOpen := &model.OpenBlock{Source: sendHash, Representative: receiver.id, Account: receiver.id}
	receiveOpen.Sig = receiver.sign(receiveOpen.SigningMessage())

	tx = mustBegin(t, db)
	result, err = p.Process(tx, receiveOpen)
	if err != nil {
		t.Fatalf("process receive-open: %v", err)
	}
	if result.Code != model.Progress {
		t.Fatalf("receive-open: want Progress, got %s", result.Code)
	}
	if result.Amount.Cmp(model.AmountFromUint64(600)) != 0 {
		t.Fatalf("receive-open: want amount 600, got %s", result.Amount.BigInt())
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit receive-open: %v", err)
	}

	tx = mustBegin(t, db)
	info, err := (store.AccountStore{}).Get(tx, sender.id)
	if err != nil {
		t.Fatalf("get sender info: %v", err)
	}
	if info.Balance.Cmp(model.AmountFromUint64(400)) != 0 {
		t.Fatalf("sender balance: want 400, got %s", info.Balance.BigInt())
	}
	_ = tx.Rollback()
}

func TestProcessSendFork(t *testing.T) {
	p, db := newTestProcessor()
	sender := newTestAccount(t)
	other := newTestAccount(t)

	tx := mustBegin(t, db)
	key := model.PendingKey{Destination: sender.id, Send: model.Hash{0xbb}}
	_ = (store.PendingStore{}).Put(tx, key, &model.PendingEntry{Source: sender.id, Amount: model.AmountFromUint64(10), Epoch: model.Epoch0})
	_ = tx.Commit()

	open := &model.OpenBlock{Source: key.Send, Representative: sender.id, Account: sender.id}
	open.Sig = sender.sign(open.SigningMessage())
	tx = mustBegin(t, db)
	if _, err := p.Process(tx, open); err != nil {
		t.Fatalf("process open: %v", err)
	}
	_ = tx.Commit()
	openHash := model.BlockHash(open)

	sendA := &model.SendBlock{PreviousHash: openHash, Destination: other.id, Balance: model.AmountFromUint64(5)}
	sendA.Sig = sender.sign(sendA.SigningMessage())
	tx = mustBegin(t, db)
	result, err := p.Process(tx, sendA)
	if err != nil {
		t.Fatalf("process sendA: %v", err)
	}
	if result.Code != model.Progress {
		t.Fatalf("sendA: want Progress, got %s", result.Code)
	}
	_ = tx.Commit()

	sendB := &model.SendBlock{PreviousHash: openHash, Destination: other.id, Balance: model.AmountFromUint64(1)}
	sendB.Sig = sender.sign(sendB.SigningMessage())
	tx = mustBegin(t, db)
	result, err = p.Process(tx, sendB)
	if err != nil {
		t.Fatalf("process sendB: %v", err)
	}
	if result.Code != model.Fork {
		t.Fatalf("sendB: want Fork, got %s", result.Code)
	}
	_ = tx.Rollback()
}

func TestProcessBadSignature(t *testing.T) {
	p, db := newTestProcessor()
	sender := newTestAccount(t)
	impostor := newTestAccount(t)

	tx := mustBegin(t, db)
	key := model.PendingKey{Destination: sender.id, Send: model.Hash{0xcc}}
	_ = (store.PendingStore{}).Put(tx, key, &model.PendingEntry{Source: sender.id, Amount: model.AmountFromUint64(10), Epoch: model.Epoch0})
	_ = tx.Commit()

	open := &model.OpenBlock{Source: key.Send, Representative: sender.id, Account: sender.id}
	open.Sig = impostor.sign(open.SigningMessage())

	tx = mustBegin(t, db)
	result, err := p.Process(tx, open)
	if err != nil {
		t.Fatalf("process open: %v", err)
	}
	if result.Code != model.BadSignature {
		t.Fatalf("want BadSignature, got %s", result.Code)
	}
	_ = tx.Rollback()
}

func TestProcessInsufficientWork(t *testing.T) {
	params := genesis.Params{WorkThreshold: ^uint64(0)}
	p := New(params, weight.New(), checksum.New())
	db := memstore.New()
	sender := newTestAccount(t)

	open := &model.OpenBlock{Source: sender.id, Representative: sender.id, Account: sender.id}
	open.Sig = sender.sign(open.SigningMessage())

	tx := mustBegin(t, db)
	result, err := p.Process(tx, open)
	if err != nil {
		t.Fatalf("process open: %v", err)
	}
	if result.Code != model.InsufficientWork {
		t.Fatalf("want InsufficientWork, got %s", result.Code)
	}
	_ = tx.Rollback()
}

func TestProcessDuplicateIsOld(t *testing.T) {
	p, db := newTestProcessor()
	sender := newTestAccount(t)

	tx := mustBegin(t, db)
	key := model.PendingKey{Destination: sender.id, Send: model.Hash{0xdd}}
	_ = (store.PendingStore{}).Put(tx, key, &model.PendingEntry{Source: sender.id, Amount: model.AmountFromUint64(10), Epoch: model.Epoch0})
	_ = tx.Commit()

	open := &model.OpenBlock{Source: key.Send, Representative: sender.id, Account: sender.id}
	open.Sig = sender.sign(open.SigningMessage())

	tx = mustBegin(t, db)
	if _, err := p.Process(tx, open); err != nil {
		t.Fatalf("process open: %v", err)
	}
	_ = tx.Commit()

	tx = mustBegin(t, db)
	result, err := p.Process(tx, open)
	if err != nil {
		t.Fatalf("process duplicate: %v", err)
	}
	if result.Code != model.Old {
		t.Fatalf("want Old, got %s", result.Code)
	}
	_ = tx.Rollback()
}

func TestProcessNegativeSpendRejected(t *testing.T) {
	p, db := newTestProcessor()
	sender := newTestAccount(t)
	receiver := newTestAccount(t)

	tx := mustBegin(t, db)
	key := model.PendingKey{Destination: sender.id, Send: model.Hash{0xee}}
	_ = (store.PendingStore{}).Put(tx, key, &model.PendingEntry{Source: sender.id, Amount: model.AmountFromUint64(10), Epoch: model.Epoch0})
	_ = tx.Commit()

	open := &model.OpenBlock{Source: key.Send, Representative: sender.id, Account: sender.id}
	open.Sig = sender.sign(open.SigningMessage())
	tx = mustBegin(t, db)
	_, _ = p.Process(tx, open)
	_ = tx.Commit()
	openHash := model.BlockHash(open)

	send := &model.SendBlock{PreviousHash: openHash, Destination: receiver.id, Balance: model.AmountFromUint64(20)}
	send.Sig = sender.sign(send.SigningMessage())
	tx = mustBegin(t, db)
	result, err := p.Process(tx, send)
	if err != nil {
		t.Fatalf("process send: %v", err)
	}
	if result.Code != model.NegativeSpend {
		t.Fatalf("want NegativeSpend, got %s", result.Code)
	}
	_ = tx.Rollback()
}

func TestProcessStateSendReceiveRoundTrip(t *testing.T) {
	p, db := newTestProcessor()
	sender := newTestAccount(t)
	receiver := newTestAccount(t)

	senderOpen := &model.StateBlock{Account: sender.id, Representative: sender.id, Balance: model.AmountFromUint64(1000), Link: sender.id}
	senderOpen.Sig = sender.sign(senderOpen.SigningMessage())

	// Seed the pending entry senderOpen's Link consumes, as if an earlier
	// send had created it.
	tx := mustBegin(t, db)
	key := model.PendingKey{Destination: sender.id, Send: sender.id}
	_ = (store.PendingStore{}).Put(tx, key, &model.PendingEntry{Source: sender.id, Amount: model.AmountFromUint64(1000), Epoch: model.Epoch0})
	_ = tx.Commit()

	tx = mustBegin(t, db)
	result, err := p.Process(tx, senderOpen)
	if err != nil {
		t.Fatalf("process sender open: %v", err)
	}
	if result.Code != model.Progress {
		t.Fatalf("sender open: want Progress, got %s", result.Code)
	}
	_ = tx.Commit()
	senderOpenHash := model.BlockHash(senderOpen)

	send := &model.StateBlock{Account: sender.id, PreviousHash: senderOpenHash, Representative: sender.id, Balance: model.AmountFromUint64(700), Link: receiver.id}
	send.Sig = sender.sign(send.SigningMessage())
	tx = mustBegin(t, db)
	result, err = p.Process(tx, send)
	if err != nil {
		t.Fatalf("process state send: %v", err)
	}
	if result.Code != model.Progress {
		t.Fatalf("state send: want Progress, got %s", result.Code)
	}
	if result.Amount.Cmp(model.AmountFromUint64(300)) != 0 {
		t.Fatalf("state send: want amount 300, got %s", result.Amount.BigInt())
	}
	_ = tx.Commit()
	sendHash := model.BlockHash(send)

	receiveOpen := &model.StateBlock{Account: receiver.id, Representative: receiver.id, Balance: model.AmountFromUint64(300), Link: sendHash}
	receiveOpen.Sig = receiver.sign(receiveOpen.SigningMessage())
	tx = mustBegin(t, db)
	result, err = p.Process(tx, receiveOpen)
	if err != nil {
		t.Fatalf("process state receive-open: %v", err)
	}
	if result.Code != model.Progress {
		t.Fatalf("state receive-open: want Progress, got %s", result.Code)
	}
	_ = tx.Commit()

	tx = mustBegin(t, db)
	total, err := (store.MetaStore{}).TotalBlocks(tx)
	if err != nil {
		t.Fatalf("total blocks: %v", err)
	}
	if total != 3 {
		t.Fatalf("want 3 total blocks, got %d", total)
	}
	_ = tx.Rollback()
}

func TestProcessStateEpochUpgrade(t *testing.T) {
	epochSigner := newTestAccount(t)
	linkValue := model.Hash{0x01, 0x02}
	params := genesis.Params{
		WorkThreshold: 0,
		Epochs: []model.EpochInfo{
			{Epoch: model.Epoch0},
			{Epoch: model.Epoch1, Signer: epochSigner.id, LinkValue: linkValue},
		},
	}
	p := New(params, weight.New(), checksum.New())
	db := memstore.New()
	account := newTestAccount(t)

	upgrade := &model.StateBlock{Account: account.id, Link: linkValue}
	upgrade.Sig = epochSigner.sign(upgrade.SigningMessage())

	tx := mustBegin(t, db)
	result, err := p.Process(tx, upgrade)
	if err != nil {
		t.Fatalf("process epoch open: %v", err)
	}
	if result.Code != model.Progress {
		t.Fatalf("epoch open: want Progress, got %s", result.Code)
	}
	_ = tx.Commit()

	tx = mustBegin(t, db)
	info, err := (store.AccountStore{}).Get(tx, account.id)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if info.Epoch != model.Epoch1 {
		t.Fatalf("want Epoch1, got %v", info.Epoch)
	}
	_ = tx.Rollback()

	// A legacy block against an epoch-upgraded account is rejected.
	legacyChange := &model.ChangeBlock{PreviousHash: model.BlockHash(upgrade), Representative: account.id}
	legacyChange.Sig = account.sign(legacyChange.SigningMessage())
	tx = mustBegin(t, db)
	result, err = p.Process(tx, legacyChange)
	if err != nil {
		t.Fatalf("process legacy change: %v", err)
	}
	if result.Code != model.BlockPosition {
		t.Fatalf("want BlockPosition, got %s", result.Code)
	}
	_ = tx.Rollback()
}

// TestProcessStateEpochUpgradeAlreadyUpgraded mirrors original_source/
// btcb/core_test/ledger.cpp's epoch_blocks_general: a first epoch-upgrade
// continuation succeeds and bumps the account to epoch_1, but a second
// epoch block stacked directly on top of it - still targeting epoch_1, not
// a later epoch - must be rejected as BlockPosition rather than silently
// re-applying.
func TestProcessStateEpochUpgradeAlreadyUpgraded(t *testing.T) {
	epochSigner := newTestAccount(t)
	linkValue := model.Hash{0x01, 0x02}
	params := genesis.Params{
		WorkThreshold: 0,
		Epochs: []model.EpochInfo{
			{Epoch: model.Epoch0},
			{Epoch: model.Epoch1, Signer: epochSigner.id, LinkValue: linkValue},
		},
	}
	p := New(params, weight.New(), checksum.New())
	db := memstore.New()
	account := newTestAccount(t)

	// Seed an already-opened, epoch_0 account directly - the block that
	// opened it is immaterial to this test, only the account state and
	// its head hash are.
	openHash := model.Hash{0xaa}
	tx := mustBegin(t, db)
	if err := (store.AccountStore{}).Put(tx, account.id, &model.AccountInfo{
		Head: openHash, OpenBlock: openHash, RepBlock: openHash,
		Balance: model.AmountFromUint64(100), BlockCount: 1,
		Epoch: model.Epoch0, Representative: account.id,
	}); err != nil {
		t.Fatalf("seed account: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit seed: %v", err)
	}

	epoch1 := &model.StateBlock{Account: account.id, PreviousHash: openHash, Representative: account.id, Balance: model.AmountFromUint64(100), Link: linkValue}
	epoch1.Sig = epochSigner.sign(epoch1.SigningMessage())
	tx = mustBegin(t, db)
	result, err := p.Process(tx, epoch1)
	if err != nil {
		t.Fatalf("process epoch1: %v", err)
	}
	if result.Code != model.Progress {
		t.Fatalf("epoch1: want Progress, got %s", result.Code)
	}
	_ = tx.Commit()
	epoch1Hash := model.BlockHash(epoch1)

	tx = mustBegin(t, db)
	info, err := (store.AccountStore{}).Get(tx, account.id)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if info.Epoch != model.Epoch1 {
		t.Fatalf("want Epoch1 after epoch1, got %v", info.Epoch)
	}
	_ = tx.Rollback()

	epoch2 := &model.StateBlock{Account: account.id, PreviousHash: epoch1Hash, Representative: account.id, Balance: model.AmountFromUint64(100), Link: linkValue}
	epoch2.Sig = epochSigner.sign(epoch2.SigningMessage())
	tx = mustBegin(t, db)
	result, err = p.Process(tx, epoch2)
	if err != nil {
		t.Fatalf("process epoch2: %v", err)
	}
	if result.Code != model.BlockPosition {
		t.Fatalf("epoch2: want BlockPosition, got %s", result.Code)
	}
	_ = tx.Rollback()
}
