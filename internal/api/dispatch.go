package api

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Arctek/core/internal/params"
)

var (
	// errUnknownOperation is returned for an operation name outside the
	// batch surface.
	errUnknownOperation = errors.New("unknown operation")

	// errBadPayload is returned when the payload does not decode.
	errBadPayload = errors.New("malformed payload")
)

// Batch operation payloads. Field names follow the operation signatures.
type (
	accessPayload struct {
		Who    []params.Address `json:"who"`
		Permit []bool           `json:"permit"`
	}

	assetValuesPayload struct {
		Assets []params.Address `json:"assets"`
		Values []uint64         `json:"values"`
	}

	oracleTypesPayload struct {
		OracleTypes []uint32         `json:"oracleTypes"`
		Assets      []params.Address `json:"assets"`
		Enabled     []bool           `json:"enabled"`
	}

	changeOracleTypesPayload struct {
		Assets      []params.Address `json:"assets"`
		Users       []params.Address `json:"users"`
		OracleTypes []uint32         `json:"oracleTypes"`
	}

	setOraclesPayload struct {
		Assets      []params.Address `json:"assets"`
		Oracles     []params.Address `json:"oracles"`
		OracleTypes []uint32         `json:"oracleTypes"`
	}

	underlyingsPayload struct {
		Bearings    []params.Address `json:"bearings"`
		Underlyings []params.Address `json:"underlyings"`
	}

	setCollateralsPayload struct {
		Assets              []params.Address `json:"assets"`
		StabilityFee        uint64           `json:"stabilityFee"`
		LiquidationFee      uint64           `json:"liquidationFee"`
		InitialRatio        uint64           `json:"initialRatio"`
		LiquidationRatio    uint64           `json:"liquidationRatio"`
		LiquidationDiscount uint64           `json:"liquidationDiscount"`
		DevaluationPeriod   uint64           `json:"devaluationPeriod"`
		DebtLimit           uint64           `json:"debtLimit"`
		OracleTypes         []uint32         `json:"oracleTypes"`
	}

	collateralAddressesPayload struct {
		Assets []params.Address `json:"assets"`
		Add    bool             `json:"add"`
	}

	assetsPayload struct {
		Assets []params.Address `json:"assets"`
	}

	colPartRangesPayload struct {
		Assets []params.Address `json:"assets"`
		Mins   []uint64         `json:"mins"`
		Maxs   []uint64         `json:"maxs"`
	}
)

// decodePayload unmarshals an operation payload into dst.
func decodePayload(payload json.RawMessage, dst any) error {
	if err := json.Unmarshal(payload, dst); err != nil {
		return fmt.Errorf("%w: %v", errBadPayload, err)
	}

	return nil
}

// dispatch routes a verified submission to the matching batch operation.
func (s *Server) dispatch(op string, principal params.Address, payload json.RawMessage) error {
	switch op {
	case "setManagers":
		var p accessPayload
		if err := decodePayload(payload, &p); err != nil {
			return err
		}

		return s.updater.SetManagers(principal, p.Who, p.Permit)

	case "setVaultAccesses":
		var p accessPayload
		if err := decodePayload(payload, &p); err != nil {
			return err
		}

		return s.updater.SetVaultAccesses(principal, p.Who, p.Permit)

	case "setStabilityFees":
		var p assetValuesPayload
		if err := decodePayload(payload, &p); err != nil {
			return err
		}

		return s.updater.SetStabilityFees(principal, p.Assets, p.Values)

	case "setLiquidationFees":
		var p assetValuesPayload
		if err := decodePayload(payload, &p); err != nil {
			return err
		}

		return s.updater.SetLiquidationFees(principal, p.Assets, p.Values)

	case "setOracleTypes":
		var p oracleTypesPayload
		if err := decodePayload(payload, &p); err != nil {
			return err
		}

		return s.updater.SetOracleTypes(principal, p.OracleTypes, p.Assets, p.Enabled)

	case "setTokenDebtLimits":
		var p assetValuesPayload
		if err := decodePayload(payload, &p); err != nil {
			return err
		}

		return s.updater.SetTokenDebtLimits(principal, p.Assets, p.Values)

	case "changeOracleTypes":
		var p changeOracleTypesPayload
		if err := decodePayload(payload, &p); err != nil {
			return err
		}

		return s.updater.ChangeOracleTypes(principal, p.Assets, p.Users, p.OracleTypes)

	case "setInitialCollateralRatios":
		var p assetValuesPayload
		if err := decodePayload(payload, &p); err != nil {
			return err
		}

		return s.updater.SetInitialCollateralRatios(principal, p.Assets, p.Values)

	case "setLiquidationRatios":
		var p assetValuesPayload
		if err := decodePayload(payload, &p); err != nil {
			return err
		}

		return s.updater.SetLiquidationRatios(principal, p.Assets, p.Values)

	case "setLiquidationDiscounts":
		var p assetValuesPayload
		if err := decodePayload(payload, &p); err != nil {
			return err
		}

		return s.updater.SetLiquidationDiscounts(principal, p.Assets, p.Values)

	case "setDevaluationPeriods":
		var p assetValuesPayload
		if err := decodePayload(payload, &p); err != nil {
			return err
		}

		return s.updater.SetDevaluationPeriods(principal, p.Assets, p.Values)

	case "setOracles":
		var p setOraclesPayload
		if err := decodePayload(payload, &p); err != nil {
			return err
		}

		return s.updater.SetOraclesInRegistry(principal, p.Assets, p.Oracles, p.OracleTypes)

	case "setUnderlyings":
		var p underlyingsPayload
		if err := decodePayload(payload, &p); err != nil {
			return err
		}

		return s.updater.SetUnderlyings(principal, p.Bearings, p.Underlyings)

	case "setCollaterals":
		var p setCollateralsPayload
		if err := decodePayload(payload, &p); err != nil {
			return err
		}

		return s.updater.SetCollaterals(principal, p.Assets,
			p.StabilityFee, p.LiquidationFee, p.InitialRatio, p.LiquidationRatio,
			p.LiquidationDiscount, p.DevaluationPeriod, p.DebtLimit, p.OracleTypes)

	case "setCollateralAddresses":
		var p collateralAddressesPayload
		if err := decodePayload(payload, &p); err != nil {
			return err
		}

		return s.updater.SetCollateralAddresses(principal, p.Assets, p.Add)

	case "unsetOracles":
		var p assetsPayload
		if err := decodePayload(payload, &p); err != nil {
			return err
		}

		return s.updater.UnsetOracles(principal, p.Assets)

	case "setColPartRanges":
		var p colPartRangesPayload
		if err := decodePayload(payload, &p); err != nil {
			return err
		}

		return s.updater.SetColPartRanges(principal, p.Assets, p.Mins, p.Maxs)

	default:
		return fmt.Errorf("%w: %s", errUnknownOperation, op)
	}
}
