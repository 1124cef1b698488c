// Package collateral implements the collateral registry: the set of
// assets eligible as collateral.
package collateral

import (
	"fmt"

	"github.com/Arctek/core/internal/params"
	"github.com/Arctek/core/internal/storage"
)

// collateralPrefix is the Pebble key prefix for registered assets.
var collateralPrefix = []byte("cr:")

// Registry stores the set of registered collateral assets in Pebble.
type Registry struct {
	db *storage.Storage
}

// NewRegistry creates a collateral registry backed by the given storage.
func NewRegistry(db *storage.Storage) *Registry {
	return &Registry{db: db}
}

// AddCollateral registers an asset as eligible collateral.
// Fails if the asset is already registered.
func (r *Registry) AddCollateral(txn *storage.Txn, asset params.Address) error {
	if asset.IsZero() {
		return fmt.Errorf("zero asset address")
	}

	key := makeKey(asset)

	existing, err := txn.Get(key)
	if err != nil {
		return err
	}

	if existing != nil {
		return fmt.Errorf("collateral already registered: %s", asset)
	}

	return txn.Set(key, []byte{1})
}

// RemoveCollateral deregisters a collateral asset.
// Fails if the asset is not registered.
func (r *Registry) RemoveCollateral(txn *storage.Txn, asset params.Address) error {
	if asset.IsZero() {
		return fmt.Errorf("zero asset address")
	}

	key := makeKey(asset)

	existing, err := txn.Get(key)
	if err != nil {
		return err
	}

	if existing == nil {
		return fmt.Errorf("collateral not registered: %s", asset)
	}

	return txn.Delete(key)
}

// IsCollateral returns true if the asset is registered.
func (r *Registry) IsCollateral(asset params.Address) bool {
	value, err := r.db.Get(makeKey(asset))

	return err == nil && len(value) == 1 && value[0] == 1
}

// Collaterals returns all registered assets in key order.
func (r *Registry) Collaterals() []params.Address {
	var assets []params.Address

	_ = r.db.IteratePrefix(collateralPrefix, func(key, value []byte) error {
		if len(key) != len(collateralPrefix)+params.AddressSize {
			return nil
		}

		var a params.Address
		copy(a[:], key[len(collateralPrefix):])

		assets = append(assets, a)

		return nil
	})

	return assets
}

// Count returns the number of registered assets.
func (r *Registry) Count() int {
	return len(r.Collaterals())
}

// makeKey builds the Pebble key for an asset: "cr:" + address bytes.
func makeKey(asset params.Address) []byte {
	key := make([]byte, len(collateralPrefix)+params.AddressSize)
	copy(key, collateralPrefix)
	copy(key[len(collateralPrefix):], asset[:])

	return key
}
