package checksum

import (
	"testing"

	"github.com/blocklattice/ledgercore/model"
	"github.com/blocklattice/ledgercore/store/memstore"
)

func hashWithFirstByte(b byte, rest byte) model.Hash {
	var h model.Hash
	h[0] = b
	h[1] = rest
	return h
}

func TestInsertRemoveSelfInverse(t *testing.T) {
	db := memstore.New()
	idx := New()

	tx, err := db.Begin(true)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer tx.RollbackUnlessClosed()

	before, err := idx.Full(tx)
	if err != nil {
		t.Fatalf("Full: %v", err)
	}

	h := hashWithFirstByte(0x42, 0x01)
	if err := idx.Insert(tx, h); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	mid, err := idx.Full(tx)
	if err != nil {
		t.Fatalf("Full: %v", err)
	}
	if mid == before {
		t.Fatalf("expected checksum to change after insert")
	}

	if err := idx.Remove(tx, h); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	after, err := idx.Full(tx)
	if err != nil {
		t.Fatalf("Full: %v", err)
	}
	if after != before {
		t.Fatalf("expected checksum to return to original after remove, got %x want %x", after, before)
	}
}

func TestChecksumRangeIsolatesBucket(t *testing.T) {
	db := memstore.New()
	idx := New()

	tx, err := db.Begin(true)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer tx.RollbackUnlessClosed()

	low := hashWithFirstByte(0x10, 0x01)
	high := hashWithFirstByte(0xF0, 0x01)
	if err := idx.Insert(tx, low); err != nil {
		t.Fatalf("Insert low: %v", err)
	}
	if err := idx.Insert(tx, high); err != nil {
		t.Fatalf("Insert high: %v", err)
	}

	var lowerBound, upperBound model.Hash
	lowerBound[0] = 0x00
	upperBound[0] = 0x20

	got, err := idx.Checksum(tx, lowerBound, upperBound)
	if err != nil {
		t.Fatalf("Checksum: %v", err)
	}
	if got != low {
		t.Fatalf("expected range checksum to isolate the low bucket, got %x want %x", got, low)
	}
}
