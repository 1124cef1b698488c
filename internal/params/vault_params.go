package params

import (
	"encoding/binary"
	"fmt"

	"github.com/Arctek/core/internal/storage"
)

// VaultParams key prefixes. Flags are present-or-absent: a set flag is
// stored as a single 0x01 byte, a cleared flag is a deleted key.
var (
	vpManagerPrefix        = []byte("vp:m:")
	vpVaultAccessPrefix    = []byte("vp:a:")
	vpStabilityFeePrefix   = []byte("vp:sf:")
	vpLiquidationFeePrefix = []byte("vp:lf:")
	vpDebtLimitPrefix      = []byte("vp:dl:")
	vpOracleTypePrefix     = []byte("vp:ot:")
	vpVaultKey             = []byte("vp:vault")
)

// VaultParams is the vault parameters store: access flags, the vault
// address of record, and per-asset borrowing parameters.
type VaultParams struct {
	db *storage.Storage
}

// NewVaultParams creates a vault parameters store backed by the given storage.
func NewVaultParams(db *storage.Storage) *VaultParams {
	return &VaultParams{db: db}
}

// IsManager returns true if the address holds the manager capability.
func (p *VaultParams) IsManager(who Address) bool {
	return p.hasFlag(vpManagerPrefix, who)
}

// CanModifyVault returns true if the address holds vault-modification access.
func (p *VaultParams) CanModifyVault(who Address) bool {
	return p.hasFlag(vpVaultAccessPrefix, who)
}

// Vault returns the vault address of record, or the zero address if unset.
func (p *VaultParams) Vault() Address {
	value, err := p.db.Get(vpVaultKey)
	if err != nil || len(value) != AddressSize {
		return ZeroAddress
	}

	var a Address
	copy(a[:], value)

	return a
}

// StabilityFee returns the per-asset stability fee.
func (p *VaultParams) StabilityFee(asset Address) uint64 {
	return p.getUint64(vpStabilityFeePrefix, asset)
}

// LiquidationFee returns the per-asset liquidation fee.
func (p *VaultParams) LiquidationFee(asset Address) uint64 {
	return p.getUint64(vpLiquidationFeePrefix, asset)
}

// TokenDebtLimit returns the per-asset debt ceiling.
func (p *VaultParams) TokenDebtLimit(asset Address) uint64 {
	return p.getUint64(vpDebtLimitPrefix, asset)
}

// IsOracleTypeEnabled returns true if the oracle type is enabled for the asset.
func (p *VaultParams) IsOracleTypeEnabled(oracleType uint32, asset Address) bool {
	value, err := p.db.Get(oracleTypeKey(oracleType, asset))

	return err == nil && len(value) == 1 && value[0] == 1
}

// SetManager grants or revokes the manager capability for an address.
func (p *VaultParams) SetManager(txn *storage.Txn, who Address, permit bool) error {
	return p.setFlag(txn, vpManagerPrefix, who, permit)
}

// SetVaultAccess grants or revokes vault-modification access for an address.
func (p *VaultParams) SetVaultAccess(txn *storage.Txn, who Address, permit bool) error {
	return p.setFlag(txn, vpVaultAccessPrefix, who, permit)
}

// SetVault records the vault address of record.
func (p *VaultParams) SetVault(txn *storage.Txn, vault Address) error {
	if vault.IsZero() {
		return fmt.Errorf("zero vault address")
	}

	return txn.Set(vpVaultKey, vault[:])
}

// SetStabilityFee sets the per-asset stability fee.
func (p *VaultParams) SetStabilityFee(txn *storage.Txn, asset Address, fee uint64) error {
	return p.setUint64(txn, vpStabilityFeePrefix, asset, fee)
}

// SetLiquidationFee sets the per-asset liquidation fee.
func (p *VaultParams) SetLiquidationFee(txn *storage.Txn, asset Address, fee uint64) error {
	return p.setUint64(txn, vpLiquidationFeePrefix, asset, fee)
}

// SetTokenDebtLimit sets the per-asset debt ceiling.
func (p *VaultParams) SetTokenDebtLimit(txn *storage.Txn, asset Address, limit uint64) error {
	return p.setUint64(txn, vpDebtLimitPrefix, asset, limit)
}

// SetOracleTypeEnabled enables or disables an oracle type for an asset.
func (p *VaultParams) SetOracleTypeEnabled(txn *storage.Txn, oracleType uint32, asset Address, enabled bool) error {
	if asset.IsZero() {
		return fmt.Errorf("zero asset address")
	}

	key := oracleTypeKey(oracleType, asset)

	if !enabled {
		return txn.Delete(key)
	}

	return txn.Set(key, []byte{1})
}

// hasFlag returns true if the flag key exists for the address.
func (p *VaultParams) hasFlag(prefix []byte, who Address) bool {
	value, err := p.db.Get(addrKey(prefix, who))

	return err == nil && len(value) == 1 && value[0] == 1
}

// setFlag stores or deletes a flag key for the address.
func (p *VaultParams) setFlag(txn *storage.Txn, prefix []byte, who Address, permit bool) error {
	if who.IsZero() {
		return fmt.Errorf("zero address")
	}

	key := addrKey(prefix, who)

	if !permit {
		return txn.Delete(key)
	}

	return txn.Set(key, []byte{1})
}

// getUint64 reads a per-asset numeric parameter.
func (p *VaultParams) getUint64(prefix []byte, asset Address) uint64 {
	value, err := p.db.Get(addrKey(prefix, asset))
	if err != nil {
		return 0
	}

	return decodeUint64(value)
}

// setUint64 writes a per-asset numeric parameter.
func (p *VaultParams) setUint64(txn *storage.Txn, prefix []byte, asset Address, v uint64) error {
	if asset.IsZero() {
		return fmt.Errorf("zero asset address")
	}

	return txn.Set(addrKey(prefix, asset), encodeUint64(v))
}

// addrKey builds a store key: prefix + address bytes.
func addrKey(prefix []byte, a Address) []byte {
	key := make([]byte, len(prefix)+AddressSize)
	copy(key, prefix)
	copy(key[len(prefix):], a[:])

	return key
}

// oracleTypeKey builds the enabled-oracle-type key: prefix + u32 type + asset.
func oracleTypeKey(oracleType uint32, asset Address) []byte {
	key := make([]byte, len(vpOracleTypePrefix)+4+AddressSize)
	copy(key, vpOracleTypePrefix)
	binary.BigEndian.PutUint32(key[len(vpOracleTypePrefix):], oracleType)
	copy(key[len(vpOracleTypePrefix)+4:], asset[:])

	return key
}
