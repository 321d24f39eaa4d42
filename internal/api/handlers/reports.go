package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/api/response"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/apperrors"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/model"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/service"
)

// ReportHandler handles HTTP requests for the derived dashboard views.
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new ReportHandler with the provided service dependency.
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

// AssetDashboard handles GET requests for one asset's derived metrics:
// wallet-level percent to target and break-even, five-day dip, P/L split by
// swing vs hold, ROI, and budget availability.
//
// Endpoint: GET /api/report/asset/{uuid}
// Response: 200 OK with AssetDashboard
// Error: 404 Not Found if asset not found
// Error: 500 Internal Server Error if the dashboard cannot be derived
func (h *ReportHandler) AssetDashboard(w http.ResponseWriter, r *http.Request) {
	assetID := chi.URLParam(r, "uuid")

	dashboard, err := h.reportService.AssetDashboard(assetID)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToBuildDashboard.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, dashboard)
}

// Overview handles GET requests for the portfolio-wide dashboard.
//
// Endpoint: GET /api/report/overview?includeHidden=true
// Response: 200 OK with PortfolioOverview
// Error: 500 Internal Server Error if the overview cannot be derived
func (h *ReportHandler) Overview(w http.ResponseWriter, r *http.Request) {
	filter := model.AssetFilter{
		IncludeHidden: r.URL.Query().Get("includeHidden") == "true",
	}

	overview, err := h.reportService.PortfolioOverview(filter)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToBuildOverview.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, overview)
}
