package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/api/response"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/apperrors"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/service"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/validation"
)

// PriceHandler handles HTTP requests for stored prices and feed refreshes.
type PriceHandler struct {
	priceService *service.PriceService
}

// NewPriceHandler creates a new PriceHandler with the provided service dependency.
func NewPriceHandler(priceService *service.PriceService) *PriceHandler {
	return &PriceHandler{
		priceService: priceService,
	}
}

// Prices handles GET requests for an asset's stored closes in a date range.
// The range defaults to the last year.
//
// Endpoint: GET /api/asset/{uuid}/price?startDate=2025-01-01&endDate=2025-12-31
// Response: 200 OK with array of AssetPrice
// Error: 400 Bad Request if a date is malformed
func (h *PriceHandler) Prices(w http.ResponseWriter, r *http.Request) {
	assetID := chi.URLParam(r, "uuid")
	q := r.URL.Query()

	endDate := time.Now().UTC()
	startDate := endDate.AddDate(-1, 0, 0)

	var err error
	if raw := q.Get("startDate"); raw != "" {
		if startDate, err = validation.ParseDate(raw); err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid startDate", raw)
			return
		}
	}
	if raw := q.Get("endDate"); raw != "" {
		if endDate, err = validation.ParseDate(raw); err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid endDate", raw)
			return
		}
	}

	prices, err := h.priceService.GetPrices(assetID, startDate, endDate)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrievePrices.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, prices)
}

// Quote handles GET requests for an asset's current display price: the
// test-price override when set, otherwise the latest stored close.
//
// Endpoint: GET /api/asset/{uuid}/quote
// Response: 200 OK with PriceQuote
// Error: 404 Not Found if the asset or its price is unknown
func (h *PriceHandler) Quote(w http.ResponseWriter, r *http.Request) {
	assetID := chi.URLParam(r, "uuid")

	quote, err := h.priceService.GetQuote(assetID)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrievePrices.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, quote)
}

// UpdatePrice handles POST requests to fetch and store the asset's latest
// close from the feed. Returns 200 when the close was already stored, 201
// when a new row was inserted.
//
// Endpoint: POST /api/asset/{uuid}/price/update
// Response: 200 OK or 201 Created with AssetPrice
// Error: 404 Not Found if asset not found
// Error: 502 Bad Gateway if the feed request fails
func (h *PriceHandler) UpdatePrice(w http.ResponseWriter, r *http.Request) {
	assetID := chi.URLParam(r, "uuid")

	price, inserted, err := h.priceService.UpdateCurrentPrice(r.Context(), assetID)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidSymbol) {
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidSymbol.Error(), "")
			return
		}
		respondServiceError(w, err, apperrors.ErrFailedToRefreshPrice.Error())
		return
	}

	status := http.StatusOK
	if inserted {
		status = http.StatusCreated
	}
	response.RespondJSON(w, status, price)
}

// BackfillHistory handles POST requests to fill every missing daily close
// between the asset's oldest transaction and yesterday.
//
// Endpoint: POST /api/asset/{uuid}/price/history
// Response: 200 OK with {"added": n}
// Error: 404 Not Found if asset not found
// Error: 500 Internal Server Error if the backfill fails
func (h *PriceHandler) BackfillHistory(w http.ResponseWriter, r *http.Request) {
	assetID := chi.URLParam(r, "uuid")

	added, err := h.priceService.BackfillHistory(r.Context(), assetID)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRefreshPrice.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]int{"added": added})
}

// RefreshAll handles POST requests to refresh the current price of every
// asset with a symbol. Individual feed failures are reported, not fatal.
//
// Endpoint: POST /api/price/refresh
// Response: 200 OK with PriceRefreshResult
// Error: 500 Internal Server Error if the refresh cannot start
func (h *PriceHandler) RefreshAll(w http.ResponseWriter, r *http.Request) {
	result, err := h.priceService.RefreshAll(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRefreshPrice.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}
