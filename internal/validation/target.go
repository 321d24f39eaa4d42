package validation

import (
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/api/request"
)

// ValidateCreateEntryTarget validates an entry target creation request.
// The drop percent is stored as a positive magnitude (e.g. 5 means "flag a 5% drop").
func ValidateCreateEntryTarget(req request.CreateEntryTargetRequest) error {
	errors := make(map[string]string)

	if err := ValidateUUID(req.AssetID); err != nil {
		return err
	}

	if req.DropPercent <= 0 {
		errors["dropPercent"] = "dropPercent must be positive"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// ValidateUpdateEntryTarget validates an entry target update request.
func ValidateUpdateEntryTarget(req request.UpdateEntryTargetRequest) error {
	errors := make(map[string]string)

	if req.DropPercent != nil && *req.DropPercent <= 0 {
		errors["dropPercent"] = "dropPercent must be positive"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// ValidateCreateProfitTarget validates a profit target creation request.
// The allocation-sum-to-100 invariant spans all of an asset's targets and is
// checked at the service layer, not here.
func ValidateCreateProfitTarget(req request.CreateProfitTargetRequest) error {
	errors := make(map[string]string)

	if err := ValidateUUID(req.AssetID); err != nil {
		return err
	}

	if req.GainPercent <= 0 {
		errors["gainPercent"] = "gainPercent must be positive"
	}

	if req.AllocationPercent <= 0 || req.AllocationPercent > 100 {
		errors["allocationPercent"] = "allocationPercent must be in (0, 100]"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// ValidateUpdateProfitTarget validates a profit target update request.
func ValidateUpdateProfitTarget(req request.UpdateProfitTargetRequest) error {
	errors := make(map[string]string)

	if req.GainPercent != nil && *req.GainPercent <= 0 {
		errors["gainPercent"] = "gainPercent must be positive"
	}
	if req.AllocationPercent != nil && (*req.AllocationPercent <= 0 || *req.AllocationPercent > 100) {
		errors["allocationPercent"] = "allocationPercent must be in (0, 100]"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
