package model

import "time"

// Holding type values classifying a buy as a short swing or a long hold.
const (
	HoldingTypeSwing = "swing"
	HoldingTypeHold  = "hold"
)

// Wallet is a lot-accounting bucket for shares bought at one price and
// allocated to one profit target. Identity is the composite key
// (AssetID, ProfitTargetID, BuyPrice), enforced by a unique constraint.
//
// RemainingShares only decreases through sells; buys at the same price and
// split adjustments are the only operations that change the other share
// totals. A wallet whose remaining shares reach (near-)zero is dropped from
// the active list but its row persists for reporting.
type Wallet struct {
	ID              string    `json:"id"`
	AssetID         string    `json:"assetId"`
	ProfitTargetID  string    `json:"profitTargetId"`
	BuyPrice        float64   `json:"buyPrice"`
	HoldingType     string    `json:"holdingType"`
	TotalShares     float64   `json:"totalShares"`
	TotalInvestment float64   `json:"totalInvestment"`
	SharesSold      float64   `json:"sharesSold"`
	RemainingShares float64   `json:"remainingShares"`
	RealizedPL      float64   `json:"realizedPl"`
	SellTargetPrice float64   `json:"sellTargetPrice"`
	CreatedAt       time.Time `json:"createdAt,omitempty"`
}

// WalletResponse is a wallet enriched with asset and target context for API responses.
type WalletResponse struct {
	Wallet
	AssetSymbol string  `json:"assetSymbol"`
	GainPercent float64 `json:"gainPercent"`
}
