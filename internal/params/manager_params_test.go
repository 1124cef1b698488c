package params

import (
	"testing"

	"github.com/Arctek/core/internal/storage"
)

func TestManagerParamsSetters(t *testing.T) {
	db := newTestStorage(t)
	vp := NewVaultParams(db)
	mp := NewManagerParams(db, vp)
	asset := addr(1)

	commit(t, db, func(txn *storage.Txn) error {
		if err := mp.SetInitialCollateralRatio(txn, asset, 70); err != nil {
			return err
		}

		if err := mp.SetLiquidationRatio(txn, asset, 80); err != nil {
			return err
		}

		if err := mp.SetLiquidationDiscount(txn, asset, 5); err != nil {
			return err
		}

		return mp.SetDevaluationPeriod(txn, asset, 3300)
	})

	if got := mp.InitialCollateralRatio(asset); got != 70 {
		t.Fatalf("expected initial ratio 70, got %d", got)
	}

	if got := mp.LiquidationRatio(asset); got != 80 {
		t.Fatalf("expected liquidation ratio 80, got %d", got)
	}

	if got := mp.LiquidationDiscount(asset); got != 5 {
		t.Fatalf("expected discount 5, got %d", got)
	}

	if got := mp.DevaluationPeriod(asset); got != 3300 {
		t.Fatalf("expected devaluation period 3300, got %d", got)
	}
}

func TestColPartRange(t *testing.T) {
	db := newTestStorage(t)
	mp := NewManagerParams(db, NewVaultParams(db))
	asset := addr(2)

	commit(t, db, func(txn *storage.Txn) error {
		return mp.SetColPartRange(txn, asset, 10, 90)
	})

	min, max := mp.ColPartRange(asset)
	if min != 10 || max != 90 {
		t.Fatalf("expected range (10, 90), got (%d, %d)", min, max)
	}

	txn := db.Begin()
	defer txn.Discard()

	if err := mp.SetColPartRange(txn, asset, 50, 40); err == nil {
		t.Fatal("expected error for inverted range")
	}
}

func TestSetCollateralWritesThrough(t *testing.T) {
	db := newTestStorage(t)
	vp := NewVaultParams(db)
	mp := NewManagerParams(db, vp)
	asset := addr(3)

	cp := CollateralParams{
		StabilityFee:           900,
		LiquidationFee:         100,
		InitialCollateralRatio: 65,
		LiquidationRatio:       75,
		LiquidationDiscount:    3,
		DevaluationPeriod:      1100,
		TokenDebtLimit:         500_000,
		OracleTypes:            []uint32{1, 5},
	}

	commit(t, db, func(txn *storage.Txn) error {
		return mp.SetCollateral(txn, asset, cp)
	})

	// Borrowing parameters land in the vault parameters store.
	if got := vp.StabilityFee(asset); got != 900 {
		t.Fatalf("expected stability fee 900, got %d", got)
	}

	if got := vp.LiquidationFee(asset); got != 100 {
		t.Fatalf("expected liquidation fee 100, got %d", got)
	}

	if got := vp.TokenDebtLimit(asset); got != 500_000 {
		t.Fatalf("expected debt limit 500000, got %d", got)
	}

	if !vp.IsOracleTypeEnabled(1, asset) || !vp.IsOracleTypeEnabled(5, asset) {
		t.Fatal("expected oracle types 1 and 5 enabled")
	}

	if vp.IsOracleTypeEnabled(2, asset) {
		t.Fatal("unexpected oracle type 2 enabled")
	}

	// The rest lands in the manager parameters store.
	if got := mp.InitialCollateralRatio(asset); got != 65 {
		t.Fatalf("expected initial ratio 65, got %d", got)
	}

	if got := mp.LiquidationRatio(asset); got != 75 {
		t.Fatalf("expected liquidation ratio 75, got %d", got)
	}
}

func TestSetCollateralZeroAsset(t *testing.T) {
	db := newTestStorage(t)
	mp := NewManagerParams(db, NewVaultParams(db))

	txn := db.Begin()
	defer txn.Discard()

	if err := mp.SetCollateral(txn, ZeroAddress, CollateralParams{}); err == nil {
		t.Fatal("expected error for zero asset")
	}
}

func TestVaultParametersAccessor(t *testing.T) {
	db := newTestStorage(t)
	vp := NewVaultParams(db)
	mp := NewManagerParams(db, vp)

	if mp.VaultParameters() != vp {
		t.Fatal("expected the owning vault parameters reference")
	}
}
