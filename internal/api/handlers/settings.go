package handlers

import (
	"net/http"

	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/api/request"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/api/response"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/pricefeed"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/service"
)

// SettingHandler handles HTTP requests for application settings. The feed
// API key is stored encrypted and never returned in responses.
type SettingHandler struct {
	settingService *service.SettingService
	feedClient     *pricefeed.HTTPClient
}

// NewSettingHandler creates a new SettingHandler. feedClient may be nil when
// no live feed is configured.
func NewSettingHandler(settingService *service.SettingService, feedClient *pricefeed.HTTPClient) *SettingHandler {
	return &SettingHandler{
		settingService: settingService,
		feedClient:     feedClient,
	}
}

// SetFeedKey handles PUT requests to store the price-feed API key. The key
// is fernet-encrypted at rest and applied to the running feed client
// immediately.
//
// Endpoint: PUT /api/setting/feed-key
// Request Body: SetFeedKeyRequest
// Response: 204 No Content
// Error: 400 Bad Request if the key is empty
// Error: 500 Internal Server Error if no fernet key is configured
func (h *SettingHandler) SetFeedKey(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.SetFeedKeyRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.APIKey == "" {
		response.RespondError(w, http.StatusBadRequest, "apiKey is required", "")
		return
	}

	if err := h.settingService.SetSecret(r.Context(), service.SettingFeedAPIKey, req.APIKey); err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to store feed key", err.Error())
		return
	}

	if h.feedClient != nil {
		h.feedClient.SetAPIKey(req.APIKey)
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// FeedKeyStatus handles GET requests to check whether a feed key is stored,
// without revealing it.
//
// Endpoint: GET /api/setting/feed-key
// Response: 200 OK with {"configured": bool}
func (h *SettingHandler) FeedKeyStatus(w http.ResponseWriter, r *http.Request) {
	key, err := h.settingService.FeedAPIKey()
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to read feed key", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]bool{"configured": key != ""})
}
