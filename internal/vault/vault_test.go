package vault

import (
	"os"
	"testing"

	"github.com/Arctek/core/internal/params"
	"github.com/Arctek/core/internal/storage"
)

// newTestStorage creates a temporary storage for testing.
func newTestStorage(t *testing.T) *storage.Storage {
	t.Helper()

	dir, err := os.MkdirTemp("", "vault_test_*")
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

func TestChangeOracleType(t *testing.T) {
	db := newTestStorage(t)
	v := New(db)
	asset, user := addr(1), addr(2)

	if got := v.OracleType(asset, user); got != 0 {
		t.Fatalf("expected oracle type 0 initially, got %d", got)
	}

	txn := db.Begin()
	if err := v.ChangeOracleType(txn, asset, user, 7); err != nil {
		t.Fatalf("change failed: %v", err)
	}

	if err := txn.Commit(); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	if got := v.OracleType(asset, user); got != 7 {
		t.Fatalf("expected oracle type 7, got %d", got)
	}

	// Keyed per (asset, user): other positions stay untouched.
	if got := v.OracleType(asset, addr(3)); got != 0 {
		t.Fatalf("expected oracle type 0 for other user, got %d", got)
	}
}

func TestChangeOracleTypeZeroAddresses(t *testing.T) {
	db := newTestStorage(t)
	v := New(db)

	txn := db.Begin()
	defer txn.Discard()

	if err := v.ChangeOracleType(txn, params.ZeroAddress, addr(1), 1); err == nil {
		t.Fatal("expected error for zero asset")
	}

	if err := v.ChangeOracleType(txn, addr(1), params.ZeroAddress, 1); err == nil {
		t.Fatal("expected error for zero user")
	}
}
