package request

type CreateEntryTargetRequest struct {
	AssetID     string  `json:"assetId"`
	DropPercent float64 `json:"dropPercent"`
	SortOrder   int     `json:"sortOrder"`
}

type UpdateEntryTargetRequest struct {
	DropPercent *float64 `json:"dropPercent,omitempty"`
	SortOrder   *int     `json:"sortOrder,omitempty"`
}

type CreateProfitTargetRequest struct {
	AssetID           string  `json:"assetId"`
	GainPercent       float64 `json:"gainPercent"`
	AllocationPercent float64 `json:"allocationPercent"`
	SortOrder         int     `json:"sortOrder"`
}

type UpdateProfitTargetRequest struct {
	GainPercent       *float64 `json:"gainPercent,omitempty"`
	AllocationPercent *float64 `json:"allocationPercent,omitempty"`
	SortOrder         *int     `json:"sortOrder,omitempty"`
}
