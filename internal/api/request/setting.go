package request

type SetFeedKeyRequest struct {
	APIKey string `json:"apiKey"`
}
