package params

import (
	"fmt"

	"github.com/Arctek/core/internal/storage"
)

// ManagerParams key prefixes.
var (
	mpInitialRatioPrefix = []byte("mp:icr:")
	mpLiqRatioPrefix     = []byte("mp:lr:")
	mpLiqDiscountPrefix  = []byte("mp:ld:")
	mpDevalPeriodPrefix  = []byte("mp:dp:")
	mpColPartMinPrefix   = []byte("mp:cmin:")
	mpColPartMaxPrefix   = []byte("mp:cmax:")
	mpReserved0Prefix    = []byte("mp:res0:")
	mpReserved1Prefix    = []byte("mp:res1:")
)

// CollateralParams is the full parameter set recorded when an asset is
// registered as collateral. The two reserved fields are persisted but carry
// no meaning; registrations always pass them as zero.
type CollateralParams struct {
	StabilityFee           uint64
	LiquidationFee         uint64
	InitialCollateralRatio uint64
	LiquidationRatio       uint64
	LiquidationDiscount    uint64
	DevaluationPeriod      uint64
	TokenDebtLimit         uint64
	OracleTypes            []uint32
	Reserved0              uint64
	Reserved1              uint64
}

// ManagerParams is the vault-manager parameters store: per-asset liquidation
// and collateralization parameters. It owns a reference to the VaultParams
// store, which full-collateral registration also writes through.
type ManagerParams struct {
	db *storage.Storage
	vp *VaultParams
}

// NewManagerParams creates a vault-manager parameters store.
// The VaultParams reference must belong to the same storage.
func NewManagerParams(db *storage.Storage, vp *VaultParams) *ManagerParams {
	return &ManagerParams{db: db, vp: vp}
}

// VaultParameters returns the owning VaultParams store.
func (p *ManagerParams) VaultParameters() *VaultParams {
	return p.vp
}

// InitialCollateralRatio returns the per-asset initial collateral ratio.
func (p *ManagerParams) InitialCollateralRatio(asset Address) uint64 {
	return p.getUint64(mpInitialRatioPrefix, asset)
}

// LiquidationRatio returns the per-asset liquidation ratio.
func (p *ManagerParams) LiquidationRatio(asset Address) uint64 {
	return p.getUint64(mpLiqRatioPrefix, asset)
}

// LiquidationDiscount returns the per-asset liquidation discount.
func (p *ManagerParams) LiquidationDiscount(asset Address) uint64 {
	return p.getUint64(mpLiqDiscountPrefix, asset)
}

// DevaluationPeriod returns the per-asset devaluation period.
func (p *ManagerParams) DevaluationPeriod(asset Address) uint64 {
	return p.getUint64(mpDevalPeriodPrefix, asset)
}

// ColPartRange returns the per-asset (min, max) col-part range.
func (p *ManagerParams) ColPartRange(asset Address) (uint64, uint64) {
	return p.getUint64(mpColPartMinPrefix, asset), p.getUint64(mpColPartMaxPrefix, asset)
}

// SetInitialCollateralRatio sets the per-asset initial collateral ratio.
func (p *ManagerParams) SetInitialCollateralRatio(txn *storage.Txn, asset Address, ratio uint64) error {
	return p.setUint64(txn, mpInitialRatioPrefix, asset, ratio)
}

// SetLiquidationRatio sets the per-asset liquidation ratio.
func (p *ManagerParams) SetLiquidationRatio(txn *storage.Txn, asset Address, ratio uint64) error {
	return p.setUint64(txn, mpLiqRatioPrefix, asset, ratio)
}

// SetLiquidationDiscount sets the per-asset liquidation discount.
func (p *ManagerParams) SetLiquidationDiscount(txn *storage.Txn, asset Address, discount uint64) error {
	return p.setUint64(txn, mpLiqDiscountPrefix, asset, discount)
}

// SetDevaluationPeriod sets the per-asset devaluation period.
func (p *ManagerParams) SetDevaluationPeriod(txn *storage.Txn, asset Address, period uint64) error {
	return p.setUint64(txn, mpDevalPeriodPrefix, asset, period)
}

// SetColPartRange sets the per-asset (min, max) col-part range.
func (p *ManagerParams) SetColPartRange(txn *storage.Txn, asset Address, min, max uint64) error {
	if min > max {
		return fmt.Errorf("col part range inverted: %d > %d", min, max)
	}

	if err := p.setUint64(txn, mpColPartMinPrefix, asset, min); err != nil {
		return err
	}

	return p.setUint64(txn, mpColPartMaxPrefix, asset, max)
}

// SetCollateral records the full collateral parameter set for an asset.
// Borrowing parameters and enabled oracle types are written through the
// owning VaultParams store; the rest is recorded here.
func (p *ManagerParams) SetCollateral(txn *storage.Txn, asset Address, cp CollateralParams) error {
	if asset.IsZero() {
		return fmt.Errorf("zero asset address")
	}

	if err := p.vp.SetStabilityFee(txn, asset, cp.StabilityFee); err != nil {
		return err
	}

	if err := p.vp.SetLiquidationFee(txn, asset, cp.LiquidationFee); err != nil {
		return err
	}

	if err := p.vp.SetTokenDebtLimit(txn, asset, cp.TokenDebtLimit); err != nil {
		return err
	}

	for _, oracleType := range cp.OracleTypes {
		if err := p.vp.SetOracleTypeEnabled(txn, oracleType, asset, true); err != nil {
			return err
		}
	}

	if err := p.setUint64(txn, mpInitialRatioPrefix, asset, cp.InitialCollateralRatio); err != nil {
		return err
	}

	if err := p.setUint64(txn, mpLiqRatioPrefix, asset, cp.LiquidationRatio); err != nil {
		return err
	}

	if err := p.setUint64(txn, mpLiqDiscountPrefix, asset, cp.LiquidationDiscount); err != nil {
		return err
	}

	if err := p.setUint64(txn, mpDevalPeriodPrefix, asset, cp.DevaluationPeriod); err != nil {
		return err
	}

	if err := p.setUint64(txn, mpReserved0Prefix, asset, cp.Reserved0); err != nil {
		return err
	}

	return p.setUint64(txn, mpReserved1Prefix, asset, cp.Reserved1)
}

// getUint64 reads a per-asset numeric parameter.
func (p *ManagerParams) getUint64(prefix []byte, asset Address) uint64 {
	value, err := p.db.Get(addrKey(prefix, asset))
	if err != nil {
		return 0
	}

	return decodeUint64(value)
}

// setUint64 writes a per-asset numeric parameter.
func (p *ManagerParams) setUint64(txn *storage.Txn, prefix []byte, asset Address, v uint64) error {
	if asset.IsZero() {
		return fmt.Errorf("zero asset address")
	}

	return txn.Set(addrKey(prefix, asset), encodeUint64(v))
}
