package request

type CreateAssetRequest struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	AssetType     string  `json:"assetType"`
	TestPrice     float64 `json:"testPrice"`
	CommissionPct float64 `json:"commissionPct"`
	AnnualBudget  float64 `json:"annualBudget"`
}

type UpdateAssetRequest struct {
	Symbol        *string  `json:"symbol,omitempty"`
	Name          *string  `json:"name,omitempty"`
	AssetType     *string  `json:"assetType,omitempty"`
	Status        *string  `json:"status,omitempty"`
	TestPrice     *float64 `json:"testPrice,omitempty"`
	CommissionPct *float64 `json:"commissionPct,omitempty"`
	AnnualBudget  *float64 `json:"annualBudget,omitempty"`
}
