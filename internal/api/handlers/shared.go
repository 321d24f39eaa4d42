// Package handlers contains the HTTP layer: request parsing, status-code
// mapping, and delegation to the service layer.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/api/response"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/apperrors"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/validation"
)

// parseJSON decodes a request body into the given request type.
// Unknown fields are rejected.
func parseJSON[T any](r *http.Request) (T, error) {
	var req T

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		return req, fmt.Errorf("invalid JSON body: %w", err)
	}

	return req, nil
}

// notFoundErrors are mapped to 404 by respondServiceError.
var notFoundErrors = []error{
	apperrors.ErrAssetNotFound,
	apperrors.ErrEntryTargetNotFound,
	apperrors.ErrProfitTargetNotFound,
	apperrors.ErrWalletNotFound,
	apperrors.ErrTransactionNotFound,
	apperrors.ErrPriceNotFound,
	apperrors.ErrSettingNotFound,
}

// conflictErrors are business-rule violations mapped to 409.
var conflictErrors = []error{
	apperrors.ErrInsufficientShares,
	apperrors.ErrWalletAssetMismatch,
	apperrors.ErrAllocationSum,
	apperrors.ErrProfitTargetInUse,
	apperrors.ErrSplitHasLaterTransactions,
	apperrors.ErrSplitWalletCollision,
	apperrors.ErrAssetInUse,
	apperrors.ErrTransactionImmutable,
}

// respondServiceError maps a service-layer error onto an HTTP status:
// validation errors to 400, missing entities to 404, business-rule
// violations to 409, everything else to 500 with fallbackMessage.
func respondServiceError(w http.ResponseWriter, err error, fallbackMessage string) {
	var validationErr *validation.Error
	if errors.As(err, &validationErr) {
		response.RespondError(w, http.StatusBadRequest, "validation failed", validationErr.Fields)
		return
	}

	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			response.RespondError(w, http.StatusNotFound, target.Error(), err.Error())
			return
		}
	}

	for _, target := range conflictErrors {
		if errors.Is(err, target) {
			response.RespondError(w, http.StatusConflict, target.Error(), err.Error())
			return
		}
	}

	response.RespondError(w, http.StatusInternalServerError, fallbackMessage, err.Error())
}
