package storage

import (
	"bytes"
	"testing"
)

func TestTxnCommit(t *testing.T) {
	db := newTestStorage(t)

	txn := db.Begin()
	txn.Set([]byte("a"), []byte("1"))
	txn.Set([]byte("b"), []byte("2"))

	// Nothing visible before commit
	got, _ := db.Get([]byte("a"))
	if got != nil {
		t.Error("staged write visible before commit")
	}

	if err := txn.Commit(); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	got, _ = db.Get([]byte("a"))
	if !bytes.Equal(got, []byte("1")) {
		t.Errorf("expected 1 after commit, got %s", got)
	}

	got, _ = db.Get([]byte("b"))
	if !bytes.Equal(got, []byte("2")) {
		t.Errorf("expected 2 after commit, got %s", got)
	}
}

func TestTxnDiscard(t *testing.T) {
	db := newTestStorage(t)
	db.Set([]byte("a"), []byte("old"))

	txn := db.Begin()
	txn.Set([]byte("a"), []byte("new"))
	txn.Set([]byte("b"), []byte("2"))
	txn.Discard()

	got, _ := db.Get([]byte("a"))
	if !bytes.Equal(got, []byte("old")) {
		t.Errorf("expected old after discard, got %s", got)
	}

	got, _ = db.Get([]byte("b"))
	if got != nil {
		t.Error("discarded write should not be visible")
	}
}

func TestTxnReadsStagedWrites(t *testing.T) {
	db := newTestStorage(t)
	db.Set([]byte("a"), []byte("old"))

	txn := db.Begin()
	defer txn.Discard()

	// Reads fall through to the store for untouched keys
	got, err := txn.Get([]byte("a"))
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !bytes.Equal(got, []byte("old")) {
		t.Errorf("expected old, got %s", got)
	}

	// Staged writes shadow the store
	txn.Set([]byte("a"), []byte("new"))

	got, _ = txn.Get([]byte("a"))
	if !bytes.Equal(got, []byte("new")) {
		t.Errorf("expected new, got %s", got)
	}

	// Staged deletes hide the key
	txn.Delete([]byte("a"))

	got, _ = txn.Get([]byte("a"))
	if got != nil {
		t.Error("expected nil after staged delete")
	}
}

func TestTxnDiscardAfterCommit(t *testing.T) {
	db := newTestStorage(t)

	txn := db.Begin()
	txn.Set([]byte("a"), []byte("1"))

	if err := txn.Commit(); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	// Deferred-discard pattern: must be a no-op after commit
	txn.Discard()

	got, _ := db.Get([]byte("a"))
	if !bytes.Equal(got, []byte("1")) {
		t.Errorf("expected 1, got %s", got)
	}
}

func TestTxnLastWriteWins(t *testing.T) {
	db := newTestStorage(t)

	txn := db.Begin()
	txn.Set([]byte("k"), []byte("first"))
	txn.Set([]byte("k"), []byte("second"))

	if err := txn.Commit(); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	got, _ := db.Get([]byte("k"))
	if !bytes.Equal(got, []byte("second")) {
		t.Errorf("expected second, got %s", got)
	}
}
