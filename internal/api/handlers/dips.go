package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/api/response"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/apperrors"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/service"
)

// DipHandler handles HTTP requests for the dip-recovery analyzer.
type DipHandler struct {
	dipService *service.DipService
}

// NewDipHandler creates a new DipHandler with the provided service dependency.
func NewDipHandler(dipService *service.DipService) *DipHandler {
	return &DipHandler{
		dipService: dipService,
	}
}

// Analyze handles GET requests to run dip-cycle analysis on a symbol's
// historical closes: detected cycles, drop and recovery statistics, a
// suggested buy threshold, and a simulation of trading it.
//
// Endpoint: GET /api/dip/{symbol}?months=12
// Response: 200 OK with dipscan.Result
// Error: 400 Bad Request if months is malformed
// Error: 500 Internal Server Error if the feed request or analysis fails
func (h *DipHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	months := 0
	if raw := r.URL.Query().Get("months"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid months", raw)
			return
		}
		months = parsed
	}

	result, err := h.dipService.AnalyzeSymbol(r.Context(), symbol, months)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToAnalyzeDips.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}
