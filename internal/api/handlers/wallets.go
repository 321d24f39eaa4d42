package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/api/response"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/apperrors"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/service"
)

// WalletHandler handles HTTP requests for wallet endpoints. Wallets are
// created and mutated only through transactions; this handler is read-only.
type WalletHandler struct {
	walletService *service.WalletService
}

// NewWalletHandler creates a new WalletHandler with the provided service dependency.
func NewWalletHandler(walletService *service.WalletService) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
	}
}

// Wallets handles GET requests to list all wallets. By default only wallets
// with remaining shares are returned; closed ones are included on request.
//
// Endpoint: GET /api/wallet?includeClosed=true
// Response: 200 OK with array of WalletResponse
func (h *WalletHandler) Wallets(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("includeClosed") != "true"

	wallets, err := h.walletService.GetAllWallets(activeOnly)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveWallets.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, wallets)
}

// WalletsPerAsset handles GET requests to list one asset's wallets.
//
// Endpoint: GET /api/asset/{uuid}/wallet?includeClosed=true
// Response: 200 OK with array of Wallet
func (h *WalletHandler) WalletsPerAsset(w http.ResponseWriter, r *http.Request) {
	assetID := chi.URLParam(r, "uuid")
	activeOnly := r.URL.Query().Get("includeClosed") != "true"

	wallets, err := h.walletService.GetWalletsByAsset(assetID, activeOnly)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveWallets.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, wallets)
}

// GetWallet handles GET requests to retrieve a single wallet by ID.
//
// Endpoint: GET /api/wallet/{uuid}
// Response: 200 OK with Wallet
// Error: 404 Not Found if wallet not found
func (h *WalletHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	walletID := chi.URLParam(r, "uuid")

	wallet, err := h.walletService.GetWallet(walletID)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveWallets.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, wallet)
}
