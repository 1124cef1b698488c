package client

import (
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/Arctek/core/internal/api"
	"github.com/Arctek/core/internal/auth"
	"github.com/Arctek/core/internal/collateral"
	"github.com/Arctek/core/internal/oracle"
	"github.com/Arctek/core/internal/params"
	"github.com/Arctek/core/internal/storage"
	"github.com/Arctek/core/internal/updater"
	"github.com/Arctek/core/internal/vault"
)

// newTestGateway starts a gateway API over temporary storage and returns
// its address plus the bootstrapped manager key.
func newTestGateway(t *testing.T) (string, *auth.KeyPair) {
	t.Helper()

	dir, err := os.MkdirTemp("", "client_test_*")
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

	vp := params.NewVaultParams(db)
	mp := params.NewManagerParams(db, vp)

	managerKey, err := auth.Generate()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	txn := db.Begin()
	if err := vp.SetManager(txn, managerKey.Address(), true); err != nil {
		t.Fatalf("failed to bootstrap manager: %v", err)
	}

	if err := txn.Commit(); err != nil {
		t.Fatalf("failed to commit bootstrap: %v", err)
	}

	u, err := updater.New(db, mp, oracle.NewRegistry(db), collateral.NewRegistry(db), vault.New(db))
	if err != nil {
		t.Fatalf("failed to create updater: %v", err)
	}

	srv := httptest.NewServer(api.New(":0", u, vp, collateral.NewRegistry(db)).Handler())
	t.Cleanup(srv.Close)

	return strings.TrimPrefix(srv.URL, "http://"), managerKey
}

func TestClientRoundTrip(t *testing.T) {
	addr, managerKey := newTestGateway(t)

	c, err := New(addr, managerKey)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	asset := params.Address{19: 1}

	if err := c.SetCollateralAddresses([]params.Address{asset}, true); err != nil {
		t.Fatalf("set collateral addresses failed: %v", err)
	}

	assets, err := c.Collaterals()
	if err != nil {
		t.Fatalf("collaterals failed: %v", err)
	}

	if len(assets) != 1 || assets[0] != asset {
		t.Fatalf("expected [%s], got %v", asset, assets)
	}

	status, err := c.Status()
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}

	if status.Collaterals != 1 {
		t.Fatalf("expected 1 collateral, got %d", status.Collaterals)
	}
}

func TestClientAuthInfo(t *testing.T) {
	addr, managerKey := newTestGateway(t)

	c, err := New(addr, managerKey)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	info, err := c.Auth(c.Address())
	if err != nil {
		t.Fatalf("auth failed: %v", err)
	}

	if !info.IsManager {
		t.Fatal("expected manager recognized")
	}
}

func TestClientUnauthorized(t *testing.T) {
	addr, _ := newTestGateway(t)

	intruderKey, err := auth.Generate()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	c, err := New(addr, intruderKey)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	err = c.SetStabilityFees([]params.Address{{19: 1}}, []uint64{100})
	if err == nil {
		t.Fatal("expected unauthorized submission to fail")
	}

	if !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected status 403 in error, got %v", err)
	}
}

func TestClientRequiresKey(t *testing.T) {
	if _, err := New("127.0.0.1:8080", nil); err == nil {
		t.Fatal("expected error for nil key")
	}
}
