package updater

import "github.com/Arctek/core/internal/params"

// AccessList answers the capability queries the gate needs. Satisfied by
// *params.VaultParams; tests may substitute their own.
type AccessList interface {
	IsManager(who params.Address) bool
	CanModifyVault(who params.Address) bool
	Vault() params.Address
}

// Gate decides whether a principal may invoke an operation.
type Gate struct {
	acl AccessList
}

// NewGate creates a gate over the given access list.
func NewGate(acl AccessList) *Gate {
	return &Gate{acl: acl}
}

// IsManager returns true if the principal holds the manager capability.
func (g *Gate) IsManager(who params.Address) bool {
	return g.acl.IsManager(who)
}

// CanModifyVault returns true if the principal may modify the vault record.
func (g *Gate) CanModifyVault(who params.Address) bool {
	return g.acl.CanModifyVault(who)
}

// IsVaultProcess returns true if the principal is the vault process of record.
func (g *Gate) IsVaultProcess(who params.Address) bool {
	vault := g.acl.Vault()

	return !vault.IsZero() && who == vault
}

// RequireManager fails with ErrUnauthorized unless the principal is a manager.
func (g *Gate) RequireManager(who params.Address) error {
	if !g.acl.IsManager(who) {
		return ErrUnauthorized
	}

	return nil
}
