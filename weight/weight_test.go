package weight

import (
	"testing"

	"github.com/blocklattice/ledgercore/model"
	"github.com/blocklattice/ledgercore/store/memstore"
)

func TestAddSubMove(t *testing.T) {
	db := memstore.New()
	idx := New()

	var a, b model.AccountId
	a[0] = 1
	b[0] = 2

	tx, err := db.Begin(true)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer tx.RollbackUnlessClosed()

	if err := idx.Add(tx, a, model.AmountFromUint64(100)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	w, err := idx.Weight(tx, 0, a)
	if err != nil {
		t.Fatalf("Weight: %v", err)
	}
	if w != model.AmountFromUint64(100) {
		t.Fatalf("expected weight 100, got %v", w.BigInt())
	}

	if err := idx.Move(tx, a, b, model.AmountFromUint64(40)); err != nil {
		t.Fatalf("Move: %v", err)
	}
	wa, _ := idx.Weight(tx, 0, a)
	wb, _ := idx.Weight(tx, 0, b)
	if wa != model.AmountFromUint64(60) || wb != model.AmountFromUint64(40) {
		t.Fatalf("expected 60/40 split, got a=%v b=%v", wa.BigInt(), wb.BigInt())
	}
}

func TestBootstrapOverrideGate(t *testing.T) {
	var acct model.AccountId
	acct[0] = 7
	overrides := map[model.AccountId]model.Amount{acct: model.AmountFromUint64(999)}
	idx := NewWithBootstrap(10, overrides)

	db := memstore.New()
	tx, err := db.Begin(true)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer tx.RollbackUnlessClosed()

	if err := idx.Add(tx, acct, model.AmountFromUint64(5)); err != nil {
		t.Fatalf("Add: %v", err)
	}

	w, err := idx.Weight(tx, 9, acct)
	if err != nil {
		t.Fatalf("Weight: %v", err)
	}
	if w != model.AmountFromUint64(999) {
		t.Fatalf("expected override to apply below threshold, got %v", w.BigInt())
	}

	w, err = idx.Weight(tx, 10, acct)
	if err != nil {
		t.Fatalf("Weight: %v", err)
	}
	if w != model.AmountFromUint64(5) {
		t.Fatalf("expected tracked value once total reaches threshold, got %v", w.BigInt())
	}
}
