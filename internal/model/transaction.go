package model

import "time"

// Transaction action values.
const (
	ActionBuy      = "buy"
	ActionSell     = "sell"
	ActionDividend = "dividend"
	ActionSLP      = "slp"
	ActionSplit    = "split"
)

// Transaction represents one event in an asset's ledger. Field usage varies
// by action:
//   - buy: Price, Quantity, Investment, HoldingType
//   - sell: Price, Quantity, WalletID (back-reference to the wallet it closes)
//   - dividend, slp: Amount (cash, no share effect)
//   - split: SplitRatio (e.g. 2 for a 2:1 split)
type Transaction struct {
	ID          string    `json:"id"`
	AssetID     string    `json:"assetId"`
	Action      string    `json:"action"`
	Date        time.Time `json:"date"`
	Price       float64   `json:"price,omitempty"`
	Quantity    float64   `json:"quantity,omitempty"`
	Investment  float64   `json:"investment,omitempty"`
	Amount      float64   `json:"amount,omitempty"`
	SplitRatio  float64   `json:"splitRatio,omitempty"`
	HoldingType string    `json:"holdingType,omitempty"`
	WalletID    string    `json:"walletId,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

// TransactionResponse represents a transaction with enriched data for API responses.
type TransactionResponse struct {
	Transaction
	AssetSymbol string `json:"assetSymbol"`
	AssetName   string `json:"assetName"`
}

// TransactionPage is one page of a paginated transaction listing. NextToken
// is empty on the final page.
type TransactionPage struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    string                `json:"nextToken,omitempty"`
}
