package model

// Percent-to-target classification tiers.
const (
	TargetStatusHit  = "hit"  // >= -0.005
	TargetStatusNear = "near" // [-1, -0.005)
	TargetStatusFar  = "far"  // < -1
)

// WalletReport is the per-wallet view on the asset dashboard: percent to the
// sell target and to break-even at the current price, plus unrealized P/L.
type WalletReport struct {
	WalletID        string  `json:"walletId"`
	ProfitTargetID  string  `json:"profitTargetId"`
	BuyPrice        float64 `json:"buyPrice"`
	HoldingType     string  `json:"holdingType"`
	RemainingShares float64 `json:"remainingShares"`
	SellTargetPrice float64 `json:"sellTargetPrice"`
	PercentToTarget float64 `json:"percentToTarget"`
	TargetStatus    string  `json:"targetStatus"`
	PercentToBE     float64 `json:"percentToBreakEven"`
	UnrealizedPL    float64 `json:"unrealizedPl"`
}

// PLBreakdown splits profit/loss by the swing vs hold classification.
type PLBreakdown struct {
	Swing    float64 `json:"swing"`
	Hold     float64 `json:"hold"`
	Combined float64 `json:"combined"`
}

// AssetDashboard is the derived per-asset view: best percent-to-target across
// open wallets, five-day dip, P/L and ROI, and budget availability.
//
// Nullable metrics use pointers: FiveDayDip is nil when no qualifying dip
// exists, ROI is nil when the cost basis is zero but profit is not (an
// undefined percentage per the fixed tie-break rule).
type AssetDashboard struct {
	AssetID         string         `json:"assetId"`
	Symbol          string         `json:"symbol"`
	Name            string         `json:"name"`
	CurrentPrice    float64        `json:"currentPrice"`
	BestPctToTarget *float64       `json:"bestPercentToTarget,omitempty"`
	TargetStatus    string         `json:"targetStatus,omitempty"`
	FiveDayDip      *float64       `json:"fiveDayDip,omitempty"`
	BuyOpportunity  bool           `json:"buyOpportunity"`
	Wallets         []WalletReport `json:"wallets"`
	RealizedPL      PLBreakdown    `json:"realizedPl"`
	UnrealizedPL    PLBreakdown    `json:"unrealizedPl"`
	TotalPL         PLBreakdown    `json:"totalPl"`
	CostBasis       float64        `json:"costBasis"`
	ROI             *float64       `json:"roi,omitempty"`
	AnnualBudget    float64        `json:"annualBudget"`
	BudgetAvailable float64        `json:"budgetAvailable"`
	OverBudget      bool           `json:"overBudget"`
}

// PortfolioOverview aggregates dashboard metrics portfolio-wide.
type PortfolioOverview struct {
	Assets          []AssetDashboard `json:"assets"`
	RealizedPL      PLBreakdown      `json:"realizedPl"`
	UnrealizedPL    PLBreakdown      `json:"unrealizedPl"`
	TotalPL         PLBreakdown      `json:"totalPl"`
	TotalCostBasis  float64          `json:"totalCostBasis"`
	TotalInvested   float64          `json:"totalInvested"`
	TotalDividends  float64          `json:"totalDividends"`
	ROI             *float64         `json:"roi,omitempty"`
	BuyOpportunities int             `json:"buyOpportunities"`
}
