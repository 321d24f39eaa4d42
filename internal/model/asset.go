package model

import "time"

// Asset type values.
const (
	AssetTypeStock  = "stock"
	AssetTypeETF    = "etf"
	AssetTypeCrypto = "crypto"
)

// Asset status values.
const (
	AssetStatusActive   = "active"
	AssetStatusHidden   = "hidden"
	AssetStatusArchived = "archived"
)

// Asset represents a tracked instrument from the database.
// TestPrice, when non-zero, overrides the feed price for simulated/testing setups.
type Asset struct {
	ID            string    `json:"id"`
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name"`
	AssetType     string    `json:"assetType"`
	Status        string    `json:"status"`
	TestPrice     float64   `json:"testPrice"`
	CommissionPct float64   `json:"commissionPct"`
	AnnualBudget  float64   `json:"annualBudget"`
	CreatedAt     time.Time `json:"createdAt,omitempty"`
}

// AssetFilter for querying assets
type AssetFilter struct {
	IncludeHidden   bool
	IncludeArchived bool
}
