// Package oracle implements the oracle registry: which price oracle
// governs an asset, which oracle implements each oracle type, and the
// underlying bindings of bearing assets.
package oracle

import (
	"encoding/binary"
	"fmt"

	"github.com/Arctek/core/internal/params"
	"github.com/Arctek/core/internal/storage"
)

// Registry key prefixes.
var (
	assetPrefix      = []byte("or:a:")
	typePrefix       = []byte("or:t:")
	underlyingPrefix = []byte("or:u:")
)

// assetRecordSize is the stored size of an asset binding: oracle + u32 type.
const assetRecordSize = params.AddressSize + 4

// Registry stores oracle bindings in Pebble.
type Registry struct {
	db *storage.Storage
}

// NewRegistry creates an oracle registry backed by the given storage.
func NewRegistry(db *storage.Storage) *Registry {
	return &Registry{db: db}
}

// SetOracle binds an (asset, oracle, oracleType) triple. The oracle also
// becomes the implementation of record for its oracle type.
func (r *Registry) SetOracle(txn *storage.Txn, asset, oracleAddr params.Address, oracleType uint32) error {
	if asset.IsZero() {
		return fmt.Errorf("zero asset address")
	}

	if oracleAddr.IsZero() {
		return fmt.Errorf("zero oracle address")
	}

	record := make([]byte, assetRecordSize)
	copy(record, oracleAddr[:])
	binary.BigEndian.PutUint32(record[params.AddressSize:], oracleType)

	if err := txn.Set(assetKey(asset), record); err != nil {
		return err
	}

	return txn.Set(typeKey(oracleType), oracleAddr[:])
}

// UnsetOracle removes the oracle binding for an asset.
// The oracle-type binding is left intact; other assets may share it.
func (r *Registry) UnsetOracle(txn *storage.Txn, asset params.Address) error {
	if asset.IsZero() {
		return fmt.Errorf("zero asset address")
	}

	return txn.Delete(assetKey(asset))
}

// OracleByAsset returns the (oracle, oracleType) binding for an asset.
// Returns the zero address if the asset has no binding.
func (r *Registry) OracleByAsset(asset params.Address) (params.Address, uint32) {
	value, err := r.db.Get(assetKey(asset))
	if err != nil || len(value) != assetRecordSize {
		return params.ZeroAddress, 0
	}

	var oracleAddr params.Address
	copy(oracleAddr[:], value[:params.AddressSize])

	return oracleAddr, binary.BigEndian.Uint32(value[params.AddressSize:])
}

// OracleByType returns the oracle of record for an oracle type, observing
// writes staged in the given transaction. Returns the zero address if unbound.
func (r *Registry) OracleByType(txn *storage.Txn, oracleType uint32) params.Address {
	value, err := txn.Get(typeKey(oracleType))
	if err != nil || len(value) != params.AddressSize {
		return params.ZeroAddress
	}

	var oracleAddr params.Address
	copy(oracleAddr[:], value)

	return oracleAddr
}

// SetUnderlying rebinds a bearing asset to its underlying asset.
func (r *Registry) SetUnderlying(txn *storage.Txn, bearing, underlying params.Address) error {
	if bearing.IsZero() {
		return fmt.Errorf("zero bearing asset")
	}

	if underlying.IsZero() {
		return fmt.Errorf("zero underlying asset")
	}

	return txn.Set(underlyingKey(bearing), underlying[:])
}

// Underlying returns the underlying asset bound to a bearing asset.
// Returns the zero address if unbound.
func (r *Registry) Underlying(bearing params.Address) params.Address {
	value, err := r.db.Get(underlyingKey(bearing))
	if err != nil || len(value) != params.AddressSize {
		return params.ZeroAddress
	}

	var underlying params.Address
	copy(underlying[:], value)

	return underlying
}

// assetKey builds the asset binding key.
func assetKey(asset params.Address) []byte {
	key := make([]byte, len(assetPrefix)+params.AddressSize)
	copy(key, assetPrefix)
	copy(key[len(assetPrefix):], asset[:])

	return key
}

// typeKey builds the oracle-type binding key.
func typeKey(oracleType uint32) []byte {
	key := make([]byte, len(typePrefix)+4)
	copy(key, typePrefix)
	binary.BigEndian.PutUint32(key[len(typePrefix):], oracleType)

	return key
}

// underlyingKey builds the bearing-asset underlying key.
func underlyingKey(bearing params.Address) []byte {
	key := make([]byte, len(underlyingPrefix)+params.AddressSize)
	copy(key, underlyingPrefix)
	copy(key[len(underlyingPrefix):], bearing[:])

	return key
}
