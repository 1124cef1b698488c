package replica

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"os"
	"testing"
	"time"

	"github.com/Arctek/core/internal/params"
	"github.com/Arctek/core/internal/storage"
)

// newTestStorage creates a temporary storage for testing.
func newTestStorage(t *testing.T) *storage.Storage {
	t.Helper()

	dir, err := os.MkdirTemp("", "replica_test_*")
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

// newTestServer starts a snapshot server on a loopback port.
func newTestServer(t *testing.T, db *storage.Storage) *Server {
	t.Helper()

	_, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	srv, err := NewServer(db, privateKey, "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	if err := srv.Start(); err != nil {
		t.Fatalf("failed to start server: %v", err)
	}

	t.Cleanup(srv.Stop)

	return srv
}

func TestSnapshotFetch(t *testing.T) {
	primary := newTestStorage(t)

	vp := params.NewVaultParams(primary)

	var manager params.Address
	manager[params.AddressSize-1] = 1

	txn := primary.Begin()
	if err := vp.SetManager(txn, manager, true); err != nil {
		t.Fatalf("set manager failed: %v", err)
	}

	if err := txn.Commit(); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	srv := newTestServer(t, primary)

	standby := newTestStorage(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	n, err := Fetch(ctx, standby, srv.Addr())
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}

	if n != 1 {
		t.Fatalf("expected 1 entry, got %d", n)
	}

	if !params.NewVaultParams(standby).IsManager(manager) {
		t.Fatal("expected manager flag replicated")
	}
}

func TestFetchFromUnreachableAddr(t *testing.T) {
	standby := newTestStorage(t)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	if _, err := Fetch(ctx, standby, "127.0.0.1:1"); err == nil {
		t.Fatal("expected fetch to fail")
	}
}

func TestServerRequiresKey(t *testing.T) {
	db := newTestStorage(t)

	if _, err := NewServer(db, nil, "127.0.0.1:0"); err == nil {
		t.Fatal("expected error for nil key")
	}

	if _, err := NewServer(nil, nil, "127.0.0.1:0"); err == nil {
		t.Fatal("expected error for nil storage")
	}
}

func TestProtocolRoundTrip(t *testing.T) {
	r, w := newPipe(t)

	go func() {
		writeMessage(w, msgSnapshotData, []byte("payload"))
		w.Close()
	}()

	msgType, data, err := readMessage(r)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	if msgType != msgSnapshotData {
		t.Fatalf("expected type %d, got %d", msgSnapshotData, msgType)
	}

	if string(data) != "payload" {
		t.Fatalf("expected payload, got %q", data)
	}
}

// newPipe returns both ends of an in-memory byte pipe.
func newPipe(t *testing.T) (*os.File, *os.File) {
	t.Helper()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}

	t.Cleanup(func() {
		r.Close()
		w.Close()
	})

	return r, w
}
