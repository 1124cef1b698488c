// Package client is the admin client for the gateway: it signs batch
// submissions with a BLS key and posts them over HTTP.
package client

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/Arctek/core/internal/auth"
	"github.com/Arctek/core/internal/params"
)

// Client connects to a gateway via HTTP and signs submissions with a BLS key.
type Client struct {
	gatewayAddr string        // gatewayAddr is the HTTP address (e.g. "127.0.0.1:8080")
	key         *auth.KeyPair // key signs batch submissions
}

// AuthInfo holds the capability flags of one principal.
type AuthInfo struct {
	Address        string `json:"address"`
	IsManager      bool   `json:"isManager"`
	CanModifyVault bool   `json:"canModifyVault"`
	IsVaultProcess bool   `json:"isVaultProcess"`
}

// Status holds gateway state for monitoring.
type Status struct {
	Vault       string `json:"vault"`
	Collaterals int    `json:"collaterals"`
}

// New creates a client for the gateway at addr, signing with the given key.
func New(addr string, key *auth.KeyPair) (*Client, error) {
	if key == nil {
		return nil, fmt.Errorf("signing key is required")
	}

	return &Client{gatewayAddr: addr, key: key}, nil
}

// Address returns the principal address of the client's signing key.
func (c *Client) Address() params.Address {
	return c.key.Address()
}

// submit signs and posts one batch operation.
func (c *Client) submit(op string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload:\n%w", err)
	}

	digest := auth.EnvelopeDigest(op, raw)

	envelope := map[string]any{
		"pubkey":    hex.EncodeToString(c.key.PublicKeyBytes()),
		"signature": hex.EncodeToString(c.key.Sign(digest[:])),
		"payload":   json.RawMessage(raw),
	}

	url := "http://" + c.gatewayAddr + "/v1/batch/" + op

	return httpPostJSON(url, envelope, nil)
}

// SetManagers grants or revokes the manager capability per address.
func (c *Client) SetManagers(who []params.Address, permit []bool) error {
	return c.submit("setManagers", map[string]any{"who": who, "permit": permit})
}

// SetVaultAccesses grants or revokes vault-modification access per address.
func (c *Client) SetVaultAccesses(who []params.Address, permit []bool) error {
	return c.submit("setVaultAccesses", map[string]any{"who": who, "permit": permit})
}

// SetStabilityFees sets the per-asset stability fee.
func (c *Client) SetStabilityFees(assets []params.Address, fees []uint64) error {
	return c.submit("setStabilityFees", map[string]any{"assets": assets, "values": fees})
}

// SetLiquidationFees sets the per-asset liquidation fee.
func (c *Client) SetLiquidationFees(assets []params.Address, fees []uint64) error {
	return c.submit("setLiquidationFees", map[string]any{"assets": assets, "values": fees})
}

// SetOracleTypes enables or disables an oracle type per (type, asset) pair.
func (c *Client) SetOracleTypes(oracleTypes []uint32, assets []params.Address, enabled []bool) error {
	return c.submit("setOracleTypes", map[string]any{
		"oracleTypes": oracleTypes, "assets": assets, "enabled": enabled,
	})
}

// SetTokenDebtLimits sets the per-asset debt ceiling.
func (c *Client) SetTokenDebtLimits(assets []params.Address, limits []uint64) error {
	return c.submit("setTokenDebtLimits", map[string]any{"assets": assets, "values": limits})
}

// ChangeOracleTypes reassigns the oracle type of (asset, user) positions.
func (c *Client) ChangeOracleTypes(assets, users []params.Address, oracleTypes []uint32) error {
	return c.submit("changeOracleTypes", map[string]any{
		"assets": assets, "users": users, "oracleTypes": oracleTypes,
	})
}

// SetInitialCollateralRatios sets the per-asset initial collateral ratio.
func (c *Client) SetInitialCollateralRatios(assets []params.Address, ratios []uint64) error {
	return c.submit("setInitialCollateralRatios", map[string]any{"assets": assets, "values": ratios})
}

// SetLiquidationRatios sets the per-asset liquidation ratio.
func (c *Client) SetLiquidationRatios(assets []params.Address, ratios []uint64) error {
	return c.submit("setLiquidationRatios", map[string]any{"assets": assets, "values": ratios})
}

// SetLiquidationDiscounts sets the per-asset liquidation discount.
func (c *Client) SetLiquidationDiscounts(assets []params.Address, discounts []uint64) error {
	return c.submit("setLiquidationDiscounts", map[string]any{"assets": assets, "values": discounts})
}

// SetDevaluationPeriods sets the per-asset devaluation period.
func (c *Client) SetDevaluationPeriods(assets []params.Address, periods []uint64) error {
	return c.submit("setDevaluationPeriods", map[string]any{"assets": assets, "values": periods})
}

// SetOracles binds (asset, oracle, oracleType) triples in the oracle registry.
func (c *Client) SetOracles(assets, oracles []params.Address, oracleTypes []uint32) error {
	return c.submit("setOracles", map[string]any{
		"assets": assets, "oracles": oracles, "oracleTypes": oracleTypes,
	})
}

// SetUnderlyings rebinds bearing assets to their underlying assets.
func (c *Client) SetUnderlyings(bearings, underlyings []params.Address) error {
	return c.submit("setUnderlyings", map[string]any{
		"bearings": bearings, "underlyings": underlyings,
	})
}

// CollateralSpec is the shared parameter set for SetCollaterals.
type CollateralSpec struct {
	StabilityFee        uint64   `json:"stabilityFee"`
	LiquidationFee      uint64   `json:"liquidationFee"`
	InitialRatio        uint64   `json:"initialRatio"`
	LiquidationRatio    uint64   `json:"liquidationRatio"`
	LiquidationDiscount uint64   `json:"liquidationDiscount"`
	DevaluationPeriod   uint64   `json:"devaluationPeriod"`
	DebtLimit           uint64   `json:"debtLimit"`
	OracleTypes         []uint32 `json:"oracleTypes"`
}

// SetCollaterals registers each asset as collateral with one shared spec.
func (c *Client) SetCollaterals(assets []params.Address, spec CollateralSpec) error {
	return c.submit("setCollaterals", map[string]any{
		"assets":              assets,
		"stabilityFee":        spec.StabilityFee,
		"liquidationFee":      spec.LiquidationFee,
		"initialRatio":        spec.InitialRatio,
		"liquidationRatio":    spec.LiquidationRatio,
		"liquidationDiscount": spec.LiquidationDiscount,
		"devaluationPeriod":   spec.DevaluationPeriod,
		"debtLimit":           spec.DebtLimit,
		"oracleTypes":         spec.OracleTypes,
	})
}

// SetCollateralAddresses adds or removes assets in the collateral registry.
func (c *Client) SetCollateralAddresses(assets []params.Address, add bool) error {
	return c.submit("setCollateralAddresses", map[string]any{"assets": assets, "add": add})
}

// UnsetOracles removes the per-asset oracle binding for each asset.
func (c *Client) UnsetOracles(assets []params.Address) error {
	return c.submit("unsetOracles", map[string]any{"assets": assets})
}

// SetColPartRanges sets the per-asset (min, max) col-part range.
func (c *Client) SetColPartRanges(assets []params.Address, mins, maxs []uint64) error {
	return c.submit("setColPartRanges", map[string]any{
		"assets": assets, "mins": mins, "maxs": maxs,
	})
}

// Auth returns the capability flags of a principal.
func (c *Client) Auth(addr params.Address) (*AuthInfo, error) {
	var info AuthInfo

	url := fmt.Sprintf("http://%s/v1/auth/%s", c.gatewayAddr, addr)
	if err := httpGet(url, &info); err != nil {
		return nil, err
	}

	return &info, nil
}

// Collaterals returns all registered collateral assets.
func (c *Client) Collaterals() ([]params.Address, error) {
	var resp struct {
		Collaterals []string `json:"collaterals"`
	}

	url := "http://" + c.gatewayAddr + "/v1/collaterals"
	if err := httpGet(url, &resp); err != nil {
		return nil, err
	}

	assets := make([]params.Address, len(resp.Collaterals))

	for i, s := range resp.Collaterals {
		a, err := params.ParseAddress(s)
		if err != nil {
			return nil, fmt.Errorf("invalid collateral address %q:\n%w", s, err)
		}

		assets[i] = a
	}

	return assets, nil
}

// Status returns gateway state for monitoring.
func (c *Client) Status() (*Status, error) {
	var status Status

	if err := httpGet("http://"+c.gatewayAddr+"/status", &status); err != nil {
		return nil, err
	}

	return &status, nil
}
