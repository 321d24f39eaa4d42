package validation

import (
	"fmt"
	"strings"

	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/api/request"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/model"
)

// ValidAssetType contains the allowed asset type values.
var ValidAssetType = map[string]bool{
	model.AssetTypeStock: true, model.AssetTypeETF: true, model.AssetTypeCrypto: true,
}

// ValidAssetStatus contains the allowed asset status values.
var ValidAssetStatus = map[string]bool{
	model.AssetStatusActive: true, model.AssetStatusHidden: true, model.AssetStatusArchived: true,
}

// ValidateCreateAsset validates an asset creation request.
//
// Required fields:
//   - symbol: non-empty ticker symbol
//   - name: non-empty display name
//   - assetType: one of: stock, etf, crypto
//
// Optional fields (validated if non-zero):
//   - testPrice, commissionPct, annualBudget: must not be negative
func ValidateCreateAsset(req request.CreateAssetRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Symbol) == "" {
		errors["symbol"] = "symbol is required"
	}

	if strings.TrimSpace(req.Name) == "" {
		errors["name"] = "name is required"
	}

	if strings.TrimSpace(req.AssetType) == "" {
		errors["assetType"] = "assetType is required"
	} else if !ValidAssetType[req.AssetType] {
		errors["assetType"] = fmt.Sprintf("invalid assetType: %s", req.AssetType)
	}

	if req.TestPrice < 0 {
		errors["testPrice"] = "testPrice must not be negative"
	}
	if req.CommissionPct < 0 {
		errors["commissionPct"] = "commissionPct must not be negative"
	}
	if req.AnnualBudget < 0 {
		errors["annualBudget"] = "annualBudget must not be negative"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// ValidateUpdateAsset validates an asset update request. All fields are
// optional, but if provided they must meet the same constraints as create.
func ValidateUpdateAsset(req request.UpdateAssetRequest) error {
	errors := make(map[string]string)

	if req.Symbol != nil && strings.TrimSpace(*req.Symbol) == "" {
		errors["symbol"] = "symbol is required"
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		errors["name"] = "name is required"
	}
	if req.AssetType != nil && !ValidAssetType[*req.AssetType] {
		errors["assetType"] = fmt.Sprintf("invalid assetType: %s", *req.AssetType)
	}
	if req.Status != nil && !ValidAssetStatus[*req.Status] {
		errors["status"] = fmt.Sprintf("invalid status: %s", *req.Status)
	}
	if req.TestPrice != nil && *req.TestPrice < 0 {
		errors["testPrice"] = "testPrice must not be negative"
	}
	if req.CommissionPct != nil && *req.CommissionPct < 0 {
		errors["commissionPct"] = "commissionPct must not be negative"
	}
	if req.AnnualBudget != nil && *req.AnnualBudget < 0 {
		errors["annualBudget"] = "annualBudget must not be negative"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
