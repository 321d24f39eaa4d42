package model

// EntryTarget is a configured percentage drop that flags a buy opportunity
// for an asset on the dashboard.
type EntryTarget struct {
	ID          string  `json:"id"`
	AssetID     string  `json:"assetId"`
	DropPercent float64 `json:"dropPercent"`
	SortOrder   int     `json:"sortOrder"`
}

// ProfitTarget is a configured percentage gain plus the share of each buy's
// investment routed to this target's wallet bucket. Allocation percents of a
// live asset's profit targets are expected to sum to 100.
type ProfitTarget struct {
	ID                string  `json:"id"`
	AssetID           string  `json:"assetId"`
	GainPercent       float64 `json:"gainPercent"`
	AllocationPercent float64 `json:"allocationPercent"`
	SortOrder         int     `json:"sortOrder"`
}
