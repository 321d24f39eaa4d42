package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/api/request"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/api/response"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/apperrors"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/service"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/validation"
)

// TargetHandler handles HTTP requests for entry-target and profit-target endpoints.
type TargetHandler struct {
	targetService *service.TargetService
}

// NewTargetHandler creates a new TargetHandler with the provided service dependency.
func NewTargetHandler(targetService *service.TargetService) *TargetHandler {
	return &TargetHandler{
		targetService: targetService,
	}
}

// EntryTargets handles GET requests to list an asset's entry targets.
//
// Endpoint: GET /api/asset/{uuid}/entry-target
// Response: 200 OK with array of EntryTarget
func (h *TargetHandler) EntryTargets(w http.ResponseWriter, r *http.Request) {
	assetID := chi.URLParam(r, "uuid")

	targets, err := h.targetService.GetEntryTargets(assetID)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveTargets.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, targets)
}

// CreateEntryTarget handles POST requests to add an entry target.
//
// Endpoint: POST /api/entry-target
// Request Body: CreateEntryTargetRequest
// Response: 201 Created with EntryTarget
// Error: 400 Bad Request if validation fails
// Error: 404 Not Found if the asset does not exist
func (h *TargetHandler) CreateEntryTarget(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateEntryTargetRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateEntryTarget(req); err != nil {
		respondServiceError(w, err, "failed to create entry target")
		return
	}

	target, err := h.targetService.CreateEntryTarget(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, "failed to create entry target")
		return
	}

	response.RespondJSON(w, http.StatusCreated, target)
}

// UpdateEntryTarget handles PUT requests to update an entry target.
//
// Endpoint: PUT /api/entry-target/{uuid}
func (h *TargetHandler) UpdateEntryTarget(w http.ResponseWriter, r *http.Request) {
	targetID := chi.URLParam(r, "uuid")

	req, err := parseJSON[request.UpdateEntryTargetRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateUpdateEntryTarget(req); err != nil {
		respondServiceError(w, err, "failed to update entry target")
		return
	}

	target, err := h.targetService.UpdateEntryTarget(r.Context(), targetID, req)
	if err != nil {
		respondServiceError(w, err, "failed to update entry target")
		return
	}

	response.RespondJSON(w, http.StatusOK, target)
}

// DeleteEntryTarget handles DELETE requests to remove an entry target.
//
// Endpoint: DELETE /api/entry-target/{uuid}
// Response: 204 No Content on successful deletion
func (h *TargetHandler) DeleteEntryTarget(w http.ResponseWriter, r *http.Request) {
	targetID := chi.URLParam(r, "uuid")

	if err := h.targetService.DeleteEntryTarget(r.Context(), targetID); err != nil {
		respondServiceError(w, err, "failed to delete entry target")
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// ProfitTargets handles GET requests to list an asset's profit targets.
//
// Endpoint: GET /api/asset/{uuid}/profit-target
// Response: 200 OK with array of ProfitTarget
func (h *TargetHandler) ProfitTargets(w http.ResponseWriter, r *http.Request) {
	assetID := chi.URLParam(r, "uuid")

	targets, err := h.targetService.GetProfitTargets(assetID)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveTargets.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, targets)
}

// CreateProfitTarget handles POST requests to add a profit target.
//
// Endpoint: POST /api/profit-target
// Request Body: CreateProfitTargetRequest
// Response: 201 Created with ProfitTarget
// Error: 400 Bad Request if validation fails
// Error: 404 Not Found if the asset does not exist
func (h *TargetHandler) CreateProfitTarget(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateProfitTargetRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateProfitTarget(req); err != nil {
		respondServiceError(w, err, "failed to create profit target")
		return
	}

	target, err := h.targetService.CreateProfitTarget(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, "failed to create profit target")
		return
	}

	response.RespondJSON(w, http.StatusCreated, target)
}

// UpdateProfitTarget handles PUT requests to update a profit target.
//
// Endpoint: PUT /api/profit-target/{uuid}
func (h *TargetHandler) UpdateProfitTarget(w http.ResponseWriter, r *http.Request) {
	targetID := chi.URLParam(r, "uuid")

	req, err := parseJSON[request.UpdateProfitTargetRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateUpdateProfitTarget(req); err != nil {
		respondServiceError(w, err, "failed to update profit target")
		return
	}

	target, err := h.targetService.UpdateProfitTarget(r.Context(), targetID, req)
	if err != nil {
		respondServiceError(w, err, "failed to update profit target")
		return
	}

	response.RespondJSON(w, http.StatusOK, target)
}

// DeleteProfitTarget handles DELETE requests to remove a profit target.
// Deletion is blocked while wallets under the target still hold shares;
// otherwise the target's allocation percent is redistributed proportionally
// across the asset's remaining profit targets.
//
// Endpoint: DELETE /api/profit-target/{uuid}
// Response: 204 No Content on successful deletion
// Error: 409 Conflict if wallets under the target still hold shares
func (h *TargetHandler) DeleteProfitTarget(w http.ResponseWriter, r *http.Request) {
	targetID := chi.URLParam(r, "uuid")

	if err := h.targetService.DeleteProfitTarget(r.Context(), targetID); err != nil {
		respondServiceError(w, err, "failed to delete profit target")
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
