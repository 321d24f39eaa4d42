package request

// AllocationInput overrides how a buy's investment is split across profit
// targets. When omitted on a buy, the asset's configured allocation percents
// are used.
type AllocationInput struct {
	ProfitTargetID string  `json:"profitTargetId"`
	Percent        float64 `json:"percent"`
}

// CreateTransactionRequest covers all ledger actions; the populated fields
// depend on Action:
//   - buy: price, investment, holdingType, optional allocations
//   - sell: walletId, quantity, price
//   - dividend, slp: amount
//   - split: splitRatio
type CreateTransactionRequest struct {
	AssetID     string            `json:"assetId"`
	Action      string            `json:"action"`
	Date        string            `json:"date"`
	Price       float64           `json:"price,omitempty"`
	Quantity    float64           `json:"quantity,omitempty"`
	Investment  float64           `json:"investment,omitempty"`
	Amount      float64           `json:"amount,omitempty"`
	SplitRatio  float64           `json:"splitRatio,omitempty"`
	HoldingType string            `json:"holdingType,omitempty"`
	WalletID    string            `json:"walletId,omitempty"`
	Allocations []AllocationInput `json:"allocations,omitempty"`
}

// UpdateTransactionRequest updates the cash-only fields of a dividend or SLP
// transaction. Buy/sell/split rows are immutable once applied to wallets;
// correcting one means deleting and re-entering it.
type UpdateTransactionRequest struct {
	Date   *string  `json:"date,omitempty"`
	Amount *float64 `json:"amount,omitempty"`
}
