package collateral

import (
	"os"
	"testing"

	"github.com/Arctek/core/internal/params"
	"github.com/Arctek/core/internal/storage"
)

// newTestStorage creates a temporary storage for testing.
func newTestStorage(t *testing.T) *storage.Storage {
	t.Helper()

	dir, err := os.MkdirTemp("", "collateral_test_*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	t.Cleanup(func() {
		os.RemoveAll(dir)
	})

	db, err := storage.New(dir)
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// addr builds a test address from a single distinguishing byte.
func addr(b byte) params.Address {
	var a params.Address
	a[params.AddressSize-1] = b

	return a
}

func TestAddRemoveCollateral(t *testing.T) {
	db := newTestStorage(t)
	reg := NewRegistry(db)
	asset := addr(1)

	txn := db.Begin()
	if err := reg.AddCollateral(txn, asset); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	if err := txn.Commit(); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	if !reg.IsCollateral(asset) {
		t.Fatal("expected asset registered")
	}

	txn = db.Begin()
	if err := reg.RemoveCollateral(txn, asset); err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	if err := txn.Commit(); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	if reg.IsCollateral(asset) {
		t.Fatal("expected asset deregistered")
	}
}

func TestAddDuplicateCollateral(t *testing.T) {
	db := newTestStorage(t)
	reg := NewRegistry(db)
	asset := addr(2)

	txn := db.Begin()
	defer txn.Discard()

	if err := reg.AddCollateral(txn, asset); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	// Duplicate within the same transaction is rejected too.
	if err := reg.AddCollateral(txn, asset); err == nil {
		t.Fatal("expected error for duplicate add")
	}
}

func TestRemoveUnknownCollateral(t *testing.T) {
	db := newTestStorage(t)
	reg := NewRegistry(db)

	txn := db.Begin()
	defer txn.Discard()

	if err := reg.RemoveCollateral(txn, addr(3)); err == nil {
		t.Fatal("expected error for unknown asset")
	}
}

func TestCollateralsListing(t *testing.T) {
	db := newTestStorage(t)
	reg := NewRegistry(db)

	txn := db.Begin()
	for _, b := range []byte{3, 1, 2} {
		if err := reg.AddCollateral(txn, addr(b)); err != nil {
			t.Fatalf("add failed: %v", err)
		}
	}

	if err := txn.Commit(); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	assets := reg.Collaterals()
	if len(assets) != 3 {
		t.Fatalf("expected 3 assets, got %d", len(assets))
	}

	// Listed in key order regardless of insertion order.
	for i, want := range []byte{1, 2, 3} {
		if assets[i] != addr(want) {
			t.Fatalf("expected %s at index %d, got %s", addr(want), i, assets[i])
		}
	}

	if reg.Count() != 3 {
		t.Fatalf("expected count 3, got %d", reg.Count())
	}
}
