// Package vault implements the vault position store surface the gateway
// needs: the oracle type selected for each (asset, user) position.
package vault

import (
	"encoding/binary"
	"fmt"

	"github.com/Arctek/core/internal/params"
	"github.com/Arctek/core/internal/storage"
)

// oracleTypePrefix is the Pebble key prefix for position oracle types.
var oracleTypePrefix = []byte("v:ot:")

// Vault stores per-position state in Pebble.
type Vault struct {
	db *storage.Storage
}

// New creates a vault store backed by the given storage.
func New(db *storage.Storage) *Vault {
	return &Vault{db: db}
}

// ChangeOracleType reassigns the oracle type governing a user's position
// in the given asset.
func (v *Vault) ChangeOracleType(txn *storage.Txn, asset, user params.Address, oracleType uint32) error {
	if asset.IsZero() {
		return fmt.Errorf("zero asset address")
	}

	if user.IsZero() {
		return fmt.Errorf("zero user address")
	}

	var value [4]byte
	binary.BigEndian.PutUint32(value[:], oracleType)

	return txn.Set(makeKey(asset, user), value[:])
}

// OracleType returns the oracle type for a user's position. Returns 0 if unset.
func (v *Vault) OracleType(asset, user params.Address) uint32 {
	value, err := v.db.Get(makeKey(asset, user))
	if err != nil || len(value) != 4 {
		return 0
	}

	return binary.BigEndian.Uint32(value)
}

// makeKey builds the position key: "v:ot:" + asset + user.
func makeKey(asset, user params.Address) []byte {
	key := make([]byte, len(oracleTypePrefix)+2*params.AddressSize)
	copy(key, oracleTypePrefix)
	copy(key[len(oracleTypePrefix):], asset[:])
	copy(key[len(oracleTypePrefix)+params.AddressSize:], user[:])

	return key
}
