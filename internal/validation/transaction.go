package validation

import (
	"fmt"
	"strings"

	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/api/request"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/model"
)

// ValidTransactionAction contains the allowed transaction action values.
var ValidTransactionAction = map[string]bool{
	model.ActionBuy: true, model.ActionSell: true, model.ActionDividend: true,
	model.ActionSLP: true, model.ActionSplit: true,
}

// ValidHoldingType contains the allowed holding classification values.
var ValidHoldingType = map[string]bool{
	model.HoldingTypeSwing: true, model.HoldingTypeHold: true,
}

// ValidateCreateTransaction validates a transaction creation request.
// Checks the shared fields first, then the action-specific ones:
//   - buy: price and investment must be positive, holdingType valid,
//     explicit allocations (if any) must sum to 100
//   - sell: walletId must be a UUID, quantity and price positive
//     (quantity vs remaining shares is checked against the wallet in the service)
//   - dividend, slp: amount must be positive
//   - split: splitRatio must be positive and not 1
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateCreateTransaction(req request.CreateTransactionRequest) error {
	errors := make(map[string]string)

	if err := ValidateUUID(req.AssetID); err != nil {
		return err
	}

	if strings.TrimSpace(req.Date) == "" {
		errors["date"] = "date is required"
	} else if _, err := ParseDate(req.Date); err != nil {
		errors["date"] = err.Error()
	}

	if strings.TrimSpace(req.Action) == "" {
		errors["action"] = "action is required"
	} else if !ValidTransactionAction[req.Action] {
		errors["action"] = fmt.Sprintf("invalid action: %s", req.Action)
	}

	switch req.Action {
	case model.ActionBuy:
		validateBuyFields(req, errors)
	case model.ActionSell:
		if err := ValidateUUID(req.WalletID); err != nil {
			errors["walletId"] = "walletId must be a valid wallet UUID"
		}
		if req.Quantity <= 0 {
			errors["quantity"] = "quantity must be positive"
		}
		if req.Price <= 0 {
			errors["price"] = "price must be positive"
		}
	case model.ActionDividend, model.ActionSLP:
		if req.Amount <= 0 {
			errors["amount"] = "amount must be positive"
		}
	case model.ActionSplit:
		if req.SplitRatio <= 0 {
			errors["splitRatio"] = "splitRatio must be positive"
		} else if req.SplitRatio == 1 {
			errors["splitRatio"] = "splitRatio of 1 has no effect"
		}
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

func validateBuyFields(req request.CreateTransactionRequest, errors map[string]string) {
	if req.Price <= 0 {
		errors["price"] = "price must be positive"
	}
	if req.Investment <= 0 {
		errors["investment"] = "investment must be positive"
	}
	if strings.TrimSpace(req.HoldingType) == "" {
		errors["holdingType"] = "holdingType is required"
	} else if !ValidHoldingType[req.HoldingType] {
		errors["holdingType"] = fmt.Sprintf("invalid holdingType: %s", req.HoldingType)
	}

	if len(req.Allocations) == 0 {
		return
	}

	percents := make([]float64, 0, len(req.Allocations))
	for _, a := range req.Allocations {
		if err := ValidateUUID(a.ProfitTargetID); err != nil {
			errors["allocations"] = "allocations must reference valid profit target UUIDs"
			return
		}
		if a.Percent <= 0 {
			errors["allocations"] = "allocation percents must be positive"
			return
		}
		percents = append(percents, a.Percent)
	}
	if !AllocationsSumTo100(percents) {
		errors["allocations"] = "allocation percents must sum to 100"
	}
}

// ValidateUpdateTransaction validates a transaction update request.
// Only dividend/slp cash fields are updatable; if provided, they must meet
// the same constraints as create.
func ValidateUpdateTransaction(req request.UpdateTransactionRequest) error {
	errors := make(map[string]string)

	if req.Date != nil {
		if strings.TrimSpace(*req.Date) == "" {
			errors["date"] = "date is required"
		} else if _, err := ParseDate(*req.Date); err != nil {
			errors["date"] = err.Error()
		}
	}
	if req.Amount != nil && *req.Amount <= 0 {
		errors["amount"] = "amount must be positive"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
