package snapshot

import (
	"bytes"
	"os"
	"testing"

	"github.com/Arctek/core/internal/params"
	"github.com/Arctek/core/internal/storage"
)

// newTestStorage creates a temporary storage for testing.
func newTestStorage(t *testing.T) *storage.Storage {
	t.Helper()

	dir, err := os.MkdirTemp("", "snapshot_test_*")
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

// seedState writes a small configuration state through the stores.
func seedState(t *testing.T, db *storage.Storage) {
	t.Helper()

	vp := params.NewVaultParams(db)

	var manager, asset params.Address
	manager[params.AddressSize-1] = 1
	asset[params.AddressSize-1] = 2

	txn := db.Begin()
	if err := vp.SetManager(txn, manager, true); err != nil {
		t.Fatalf("set manager failed: %v", err)
	}

	if err := vp.SetStabilityFee(txn, asset, 900); err != nil {
		t.Fatalf("set fee failed: %v", err)
	}

	if err := txn.Commit(); err != nil {
		t.Fatalf("commit failed: %v", err)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	src := newTestStorage(t)
	seedState(t, src)

	data, err := Create(src)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	dst := newTestStorage(t)

	n, err := Apply(dst, data)
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	if n != 2 {
		t.Fatalf("expected 2 entries restored, got %d", n)
	}

	vp := params.NewVaultParams(dst)

	var manager, asset params.Address
	manager[params.AddressSize-1] = 1
	asset[params.AddressSize-1] = 2

	if !vp.IsManager(manager) {
		t.Fatal("expected manager flag restored")
	}

	if got := vp.StabilityFee(asset); got != 900 {
		t.Fatalf("expected stability fee 900, got %d", got)
	}
}

func TestSnapshotDeterministic(t *testing.T) {
	db := newTestStorage(t)
	seedState(t, db)

	a, err := Create(db)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	b, err := Create(db)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if !bytes.Equal(a, b) {
		t.Fatal("expected deterministic snapshot encoding")
	}
}

func TestApplyRejectsCorruption(t *testing.T) {
	src := newTestStorage(t)
	seedState(t, src)

	data, err := Create(src)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Flip one byte in the body; the checksum must catch it.
	corrupted := make([]byte, len(data))
	copy(corrupted, data)
	corrupted[10] ^= 0xFF

	dst := newTestStorage(t)

	if _, err := Apply(dst, corrupted); err == nil {
		t.Fatal("expected corrupted snapshot rejected")
	}

	if _, err := Apply(dst, data[:5]); err == nil {
		t.Fatal("expected truncated snapshot rejected")
	}
}

func TestCompressRoundTrip(t *testing.T) {
	src := newTestStorage(t)
	seedState(t, src)

	data, err := Create(src)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	compressed, err := Compress(data)
	if err != nil {
		t.Fatalf("compress failed: %v", err)
	}

	restored, err := Decompress(compressed)
	if err != nil {
		t.Fatalf("decompress failed: %v", err)
	}

	if !bytes.Equal(data, restored) {
		t.Fatal("expected identical data after round trip")
	}
}

func TestEmptySnapshot(t *testing.T) {
	src := newTestStorage(t)

	data, err := Create(src)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	dst := newTestStorage(t)

	n, err := Apply(dst, data)
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	if n != 0 {
		t.Fatalf("expected 0 entries, got %d", n)
	}
}
