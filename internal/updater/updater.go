// Package updater implements the batch coordinator: manager-gated batch
// operations that apply parameter mutations to the configuration stores
// with all-or-nothing semantics.
package updater

import (
	"fmt"
	"sync"

	"github.com/Arctek/core/internal/collateral"
	"github.com/Arctek/core/internal/oracle"
	"github.com/Arctek/core/internal/params"
	"github.com/Arctek/core/internal/storage"
	"github.com/Arctek/core/internal/vault"
)

// bearingAssetOracleType is the oracle type reserved for bearing assets.
// Rebinding an underlying requires an oracle of this type to be registered.
const bearingAssetOracleType = 9

// Updater applies batched parameter updates. Every operation authorizes the
// caller, validates that its parallel inputs align, then dispatches one
// mutation per element inside a single storage transaction. A batch either
// commits whole or leaves no trace.
type Updater struct {
	mu sync.Mutex // serializes batches

	db            *storage.Storage
	gate          *Gate
	vaultParams   *params.VaultParams
	managerParams *params.ManagerParams
	oracles       *oracle.Registry
	collaterals   *collateral.Registry
	positions     *vault.Vault
}

// New creates a batch updater over the given stores. The vault parameters
// store is resolved through the manager parameters store and also backs the
// authorization gate.
func New(db *storage.Storage, managerParams *params.ManagerParams, oracles *oracle.Registry, collaterals *collateral.Registry, positions *vault.Vault) (*Updater, error) {
	if db == nil || managerParams == nil || oracles == nil || collaterals == nil || positions == nil {
		return nil, ErrInvalidConfig
	}

	vaultParams := managerParams.VaultParameters()
	if vaultParams == nil {
		return nil, ErrInvalidConfig
	}

	return &Updater{
		db:            db,
		gate:          NewGate(vaultParams),
		vaultParams:   vaultParams,
		managerParams: managerParams,
		oracles:       oracles,
		collaterals:   collaterals,
		positions:     positions,
	}, nil
}

// Gate returns the authorization gate.
func (u *Updater) Gate() *Gate {
	return u.gate
}

// apply runs one batch under the uniform protocol: authorize the caller,
// then dispatch inside a single transaction that commits only if every
// element succeeded. Shape validation happens inside fn, before any write.
func (u *Updater) apply(name string, caller params.Address, fn func(txn *storage.Txn) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if err := u.gate.RequireManager(caller); err != nil {
		return err
	}

	txn := u.db.Begin()
	defer txn.Discard()

	if err := fn(txn); err != nil {
		return err
	}

	if err := txn.Commit(); err != nil {
		return fmt.Errorf("commit %s:\n%w", name, err)
	}

	return nil
}

// SetManagers grants or revokes the manager capability per address.
func (u *Updater) SetManagers(caller params.Address, who []params.Address, permit []bool) error {
	return u.apply("setManagers", caller, func(txn *storage.Txn) error {
		if len(who) != len(permit) {
			return ErrLengthMismatch
		}

		for i := range who {
			if err := u.vaultParams.SetManager(txn, who[i], permit[i]); err != nil {
				return fmt.Errorf("set manager %s:\n%w", who[i], err)
			}
		}

		return nil
	})
}

// SetVaultAccesses grants or revokes vault-modification access per address.
func (u *Updater) SetVaultAccesses(caller params.Address, who []params.Address, permit []bool) error {
	return u.apply("setVaultAccesses", caller, func(txn *storage.Txn) error {
		if len(who) != len(permit) {
			return ErrLengthMismatch
		}

		for i := range who {
			if err := u.vaultParams.SetVaultAccess(txn, who[i], permit[i]); err != nil {
				return fmt.Errorf("set vault access %s:\n%w", who[i], err)
			}
		}

		return nil
	})
}

// SetStabilityFees sets the per-asset stability fee.
func (u *Updater) SetStabilityFees(caller params.Address, assets []params.Address, fees []uint64) error {
	return u.apply("setStabilityFees", caller, func(txn *storage.Txn) error {
		if len(assets) != len(fees) {
			return ErrLengthMismatch
		}

		for i := range assets {
			if err := u.vaultParams.SetStabilityFee(txn, assets[i], fees[i]); err != nil {
				return fmt.Errorf("set stability fee %s:\n%w", assets[i], err)
			}
		}

		return nil
	})
}

// SetLiquidationFees sets the per-asset liquidation fee.
func (u *Updater) SetLiquidationFees(caller params.Address, assets []params.Address, fees []uint64) error {
	return u.apply("setLiquidationFees", caller, func(txn *storage.Txn) error {
		if len(assets) != len(fees) {
			return ErrLengthMismatch
		}

		for i := range assets {
			if err := u.vaultParams.SetLiquidationFee(txn, assets[i], fees[i]); err != nil {
				return fmt.Errorf("set liquidation fee %s:\n%w", assets[i], err)
			}
		}

		return nil
	})
}

// SetOracleTypes enables or disables an oracle type per (type, asset) pair.
func (u *Updater) SetOracleTypes(caller params.Address, oracleTypes []uint32, assets []params.Address, enabled []bool) error {
	return u.apply("setOracleTypes", caller, func(txn *storage.Txn) error {
		if len(oracleTypes) != len(assets) || len(assets) != len(enabled) {
			return ErrLengthMismatch
		}

		for i := range assets {
			if err := u.vaultParams.SetOracleTypeEnabled(txn, oracleTypes[i], assets[i], enabled[i]); err != nil {
				return fmt.Errorf("set oracle type %d for %s:\n%w", oracleTypes[i], assets[i], err)
			}
		}

		return nil
	})
}

// SetTokenDebtLimits sets the per-asset debt ceiling.
func (u *Updater) SetTokenDebtLimits(caller params.Address, assets []params.Address, limits []uint64) error {
	return u.apply("setTokenDebtLimits", caller, func(txn *storage.Txn) error {
		if len(assets) != len(limits) {
			return ErrLengthMismatch
		}

		for i := range assets {
			if err := u.vaultParams.SetTokenDebtLimit(txn, assets[i], limits[i]); err != nil {
				return fmt.Errorf("set debt limit %s:\n%w", assets[i], err)
			}
		}

		return nil
	})
}

// ChangeOracleTypes reassigns the oracle type of (asset, user) positions.
func (u *Updater) ChangeOracleTypes(caller params.Address, assets, users []params.Address, oracleTypes []uint32) error {
	return u.apply("changeOracleTypes", caller, func(txn *storage.Txn) error {
		if len(assets) != len(users) || len(users) != len(oracleTypes) {
			return ErrLengthMismatch
		}

		for i := range assets {
			if err := u.positions.ChangeOracleType(txn, assets[i], users[i], oracleTypes[i]); err != nil {
				return fmt.Errorf("change oracle type for %s/%s:\n%w", assets[i], users[i], err)
			}
		}

		return nil
	})
}

// SetInitialCollateralRatios sets the per-asset initial collateral ratio.
func (u *Updater) SetInitialCollateralRatios(caller params.Address, assets []params.Address, ratios []uint64) error {
	return u.apply("setInitialCollateralRatios", caller, func(txn *storage.Txn) error {
		if len(assets) != len(ratios) {
			return ErrLengthMismatch
		}

		for i := range assets {
			if err := u.managerParams.SetInitialCollateralRatio(txn, assets[i], ratios[i]); err != nil {
				return fmt.Errorf("set initial collateral ratio %s:\n%w", assets[i], err)
			}
		}

		return nil
	})
}

// SetLiquidationRatios sets the per-asset liquidation ratio.
func (u *Updater) SetLiquidationRatios(caller params.Address, assets []params.Address, ratios []uint64) error {
	return u.apply("setLiquidationRatios", caller, func(txn *storage.Txn) error {
		if len(assets) != len(ratios) {
			return ErrLengthMismatch
		}

		for i := range assets {
			if err := u.managerParams.SetLiquidationRatio(txn, assets[i], ratios[i]); err != nil {
				return fmt.Errorf("set liquidation ratio %s:\n%w", assets[i], err)
			}
		}

		return nil
	})
}

// SetLiquidationDiscounts sets the per-asset liquidation discount.
func (u *Updater) SetLiquidationDiscounts(caller params.Address, assets []params.Address, discounts []uint64) error {
	return u.apply("setLiquidationDiscounts", caller, func(txn *storage.Txn) error {
		if len(assets) != len(discounts) {
			return ErrLengthMismatch
		}

		for i := range assets {
			if err := u.managerParams.SetLiquidationDiscount(txn, assets[i], discounts[i]); err != nil {
				return fmt.Errorf("set liquidation discount %s:\n%w", assets[i], err)
			}
		}

		return nil
	})
}

// SetDevaluationPeriods sets the per-asset devaluation period.
func (u *Updater) SetDevaluationPeriods(caller params.Address, assets []params.Address, periods []uint64) error {
	return u.apply("setDevaluationPeriods", caller, func(txn *storage.Txn) error {
		if len(assets) != len(periods) {
			return ErrLengthMismatch
		}

		for i := range assets {
			if err := u.managerParams.SetDevaluationPeriod(txn, assets[i], periods[i]); err != nil {
				return fmt.Errorf("set devaluation period %s:\n%w", assets[i], err)
			}
		}

		return nil
	})
}

// SetOraclesInRegistry binds (asset, oracle, oracleType) triples in the
// oracle registry.
func (u *Updater) SetOraclesInRegistry(caller params.Address, assets, oracleAddrs []params.Address, oracleTypes []uint32) error {
	return u.apply("setOracles", caller, func(txn *storage.Txn) error {
		if len(assets) != len(oracleAddrs) || len(oracleAddrs) != len(oracleTypes) {
			return ErrLengthMismatch
		}

		for i := range assets {
			if err := u.oracles.SetOracle(txn, assets[i], oracleAddrs[i], oracleTypes[i]); err != nil {
				return fmt.Errorf("set oracle %s:\n%w", assets[i], err)
			}
		}

		return nil
	})
}

// SetUnderlyings rebinds bearing assets to their underlying assets. Each
// element requires the bearing-asset oracle type to have an oracle of record.
func (u *Updater) SetUnderlyings(caller params.Address, bearings, underlyings []params.Address) error {
	return u.apply("setUnderlyings", caller, func(txn *storage.Txn) error {
		if len(bearings) != len(underlyings) {
			return ErrLengthMismatch
		}

		for i := range bearings {
			if u.oracles.OracleByType(txn, bearingAssetOracleType).IsZero() {
				return fmt.Errorf("no oracle of record for bearing asset type %d", bearingAssetOracleType)
			}

			if err := u.oracles.SetUnderlying(txn, bearings[i], underlyings[i]); err != nil {
				return fmt.Errorf("set underlying %s:\n%w", bearings[i], err)
			}
		}

		return nil
	})
}

// SetCollaterals registers each asset as collateral with one shared parameter
// set: the full registration is written to the manager parameters store, then
// the asset is added to the collateral registry. The reserved trailing fields
// of the registration are always zero.
func (u *Updater) SetCollaterals(caller params.Address, assets []params.Address, stabilityFee, liquidationFee, initialRatio, liquidationRatio, liquidationDiscount, devaluationPeriod, debtLimit uint64, oracleTypes []uint32) error {
	return u.apply("setCollaterals", caller, func(txn *storage.Txn) error {
		cp := params.CollateralParams{
			StabilityFee:           stabilityFee,
			LiquidationFee:         liquidationFee,
			InitialCollateralRatio: initialRatio,
			LiquidationRatio:       liquidationRatio,
			LiquidationDiscount:    liquidationDiscount,
			DevaluationPeriod:      devaluationPeriod,
			TokenDebtLimit:         debtLimit,
			OracleTypes:            oracleTypes,
		}

		for i := range assets {
			if err := u.managerParams.SetCollateral(txn, assets[i], cp); err != nil {
				return fmt.Errorf("register collateral %s:\n%w", assets[i], err)
			}

			if err := u.collaterals.AddCollateral(txn, assets[i]); err != nil {
				return fmt.Errorf("add collateral %s:\n%w", assets[i], err)
			}
		}

		return nil
	})
}

// SetCollateralAddresses adds or removes each asset in the collateral
// registry, selected by one shared flag.
func (u *Updater) SetCollateralAddresses(caller params.Address, assets []params.Address, add bool) error {
	return u.apply("setCollateralAddresses", caller, func(txn *storage.Txn) error {
		for i := range assets {
			var err error
			if add {
				err = u.collaterals.AddCollateral(txn, assets[i])
			} else {
				err = u.collaterals.RemoveCollateral(txn, assets[i])
			}

			if err != nil {
				return fmt.Errorf("update collateral registry %s:\n%w", assets[i], err)
			}
		}

		return nil
	})
}

// UnsetOracles removes the per-asset oracle binding for each asset.
func (u *Updater) UnsetOracles(caller params.Address, assets []params.Address) error {
	return u.apply("unsetOracles", caller, func(txn *storage.Txn) error {
		for i := range assets {
			if err := u.oracles.UnsetOracle(txn, assets[i]); err != nil {
				return fmt.Errorf("unset oracle %s:\n%w", assets[i], err)
			}
		}

		return nil
	})
}

// SetColPartRanges sets the per-asset (min, max) col-part range.
func (u *Updater) SetColPartRanges(caller params.Address, assets []params.Address, mins, maxs []uint64) error {
	return u.apply("setColPartRanges", caller, func(txn *storage.Txn) error {
		if len(assets) != len(mins) || len(mins) != len(maxs) {
			return ErrLengthMismatch
		}

		for i := range assets {
			if err := u.managerParams.SetColPartRange(txn, assets[i], mins[i], maxs[i]); err != nil {
				return fmt.Errorf("set col part range %s:\n%w", assets[i], err)
			}
		}

		return nil
	})
}
