package testutil

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/model"
)

// MakeID generates a unique ID for test entities.
func MakeID() string {
	return uuid.New().String()
}

// Date builds a midnight-UTC time from year/month/day, the form every
// date-only column stores.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// AssetBuilder provides a fluent interface for creating test assets.
//
// Example usage:
//
//	// Simple creation with defaults
//	asset := testutil.NewAsset().Build(t, db)
//
//	// Customized asset
//	asset := testutil.NewAsset().
//	    WithSymbol("TSLA").
//	    WithCommission(0.5).
//	    WithBudget(10000).
//	    Build(t, db)
type AssetBuilder struct {
	ID            string
	Symbol        string
	Name          string
	AssetType     string
	Status        string
	TestPrice     float64
	CommissionPct float64
	AnnualBudget  float64
}

var assetCounter int

// NewAsset creates an AssetBuilder with sensible defaults and a unique symbol.
func NewAsset() *AssetBuilder {
	assetCounter++
	return &AssetBuilder{
		ID:        MakeID(),
		Symbol:    fmt.Sprintf("TST%d", assetCounter),
		Name:      "Test Asset",
		AssetType: model.AssetTypeStock,
		Status:    model.AssetStatusActive,
	}
}

// WithID sets a custom ID.
func (b *AssetBuilder) WithID(id string) *AssetBuilder {
	b.ID = id
	return b
}

// WithSymbol sets a custom ticker symbol.
func (b *AssetBuilder) WithSymbol(symbol string) *AssetBuilder {
	b.Symbol = symbol
	return b
}

// WithName sets a custom display name.
func (b *AssetBuilder) WithName(name string) *AssetBuilder {
	b.Name = name
	return b
}

// WithType sets the asset type.
func (b *AssetBuilder) WithType(assetType string) *AssetBuilder {
	b.AssetType = assetType
	return b
}

// WithStatus sets the status.
func (b *AssetBuilder) WithStatus(status string) *AssetBuilder {
	b.Status = status
	return b
}

// WithTestPrice sets a price override used instead of feed data.
func (b *AssetBuilder) WithTestPrice(price float64) *AssetBuilder {
	b.TestPrice = price
	return b
}

// WithCommission sets the commission/fee percent.
func (b *AssetBuilder) WithCommission(pct float64) *AssetBuilder {
	b.CommissionPct = pct
	return b
}

// WithBudget sets the annual budget.
func (b *AssetBuilder) WithBudget(budget float64) *AssetBuilder {
	b.AnnualBudget = budget
	return b
}

// Build creates the asset in the database and returns it.
func (b *AssetBuilder) Build(t *testing.T, db *sql.DB) model.Asset {
	t.Helper()

	query := `
		INSERT INTO asset (id, symbol, name, asset_type, status, test_price, commission_pct, annual_budget)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.Symbol, b.Name, b.AssetType, b.Status, b.TestPrice, b.CommissionPct, b.AnnualBudget)
	if err != nil {
		t.Fatalf("Failed to create test asset: %v", err)
	}

	return model.Asset{
		ID:            b.ID,
		Symbol:        b.Symbol,
		Name:          b.Name,
		AssetType:     b.AssetType,
		Status:        b.Status,
		TestPrice:     b.TestPrice,
		CommissionPct: b.CommissionPct,
		AnnualBudget:  b.AnnualBudget,
	}
}

// EntryTargetBuilder provides a fluent interface for creating test entry targets.
type EntryTargetBuilder struct {
	ID          string
	AssetID     string
	DropPercent float64
	SortOrder   int
}

// NewEntryTarget creates an EntryTargetBuilder for the given asset.
func NewEntryTarget(assetID string) *EntryTargetBuilder {
	return &EntryTargetBuilder{
		ID:          MakeID(),
		AssetID:     assetID,
		DropPercent: 5,
	}
}

// WithDrop sets the drop percent.
func (b *EntryTargetBuilder) WithDrop(pct float64) *EntryTargetBuilder {
	b.DropPercent = pct
	return b
}

// WithSortOrder sets the sort order.
func (b *EntryTargetBuilder) WithSortOrder(order int) *EntryTargetBuilder {
	b.SortOrder = order
	return b
}

// Build creates the entry target in the database and returns it.
func (b *EntryTargetBuilder) Build(t *testing.T, db *sql.DB) model.EntryTarget {
	t.Helper()

	query := `
		INSERT INTO entry_target (id, asset_id, drop_percent, sort_order)
		VALUES (?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.AssetID, b.DropPercent, b.SortOrder)
	if err != nil {
		t.Fatalf("Failed to create test entry target: %v", err)
	}

	return model.EntryTarget{
		ID:          b.ID,
		AssetID:     b.AssetID,
		DropPercent: b.DropPercent,
		SortOrder:   b.SortOrder,
	}
}

// ProfitTargetBuilder provides a fluent interface for creating test profit targets.
type ProfitTargetBuilder struct {
	ID                string
	AssetID           string
	GainPercent       float64
	AllocationPercent float64
	SortOrder         int
}

// NewProfitTarget creates a ProfitTargetBuilder for the given asset with a
// default of +8% gain and 100% allocation.
func NewProfitTarget(assetID string) *ProfitTargetBuilder {
	return &ProfitTargetBuilder{
		ID:                MakeID(),
		AssetID:           assetID,
		GainPercent:       8,
		AllocationPercent: 100,
	}
}

// WithGain sets the gain percent.
func (b *ProfitTargetBuilder) WithGain(pct float64) *ProfitTargetBuilder {
	b.GainPercent = pct
	return b
}

// WithAllocation sets the allocation percent.
func (b *ProfitTargetBuilder) WithAllocation(pct float64) *ProfitTargetBuilder {
	b.AllocationPercent = pct
	return b
}

// WithSortOrder sets the sort order.
func (b *ProfitTargetBuilder) WithSortOrder(order int) *ProfitTargetBuilder {
	b.SortOrder = order
	return b
}

// Build creates the profit target in the database and returns it.
func (b *ProfitTargetBuilder) Build(t *testing.T, db *sql.DB) model.ProfitTarget {
	t.Helper()

	query := `
		INSERT INTO profit_target (id, asset_id, gain_percent, allocation_percent, sort_order)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.AssetID, b.GainPercent, b.AllocationPercent, b.SortOrder)
	if err != nil {
		t.Fatalf("Failed to create test profit target: %v", err)
	}

	return model.ProfitTarget{
		ID:                b.ID,
		AssetID:           b.AssetID,
		GainPercent:       b.GainPercent,
		AllocationPercent: b.AllocationPercent,
		SortOrder:         b.SortOrder,
	}
}

// WalletBuilder provides a fluent interface for creating test wallets.
type WalletBuilder struct {
	ID              string
	AssetID         string
	ProfitTargetID  string
	BuyPrice        float64
	HoldingType     string
	TotalShares     float64
	TotalInvestment float64
	SharesSold      float64
	RemainingShares float64
	RealizedPL      float64
	SellTargetPrice float64
	CreatedAt       time.Time
}

// NewWallet creates a WalletBuilder for the given asset and profit target:
// 100 shares at $10, all remaining, dated 2025-01-02.
func NewWallet(assetID, profitTargetID string) *WalletBuilder {
	return &WalletBuilder{
		ID:              MakeID(),
		AssetID:         assetID,
		ProfitTargetID:  profitTargetID,
		BuyPrice:        10,
		HoldingType:     model.HoldingTypeSwing,
		TotalShares:     100,
		TotalInvestment: 1000,
		RemainingShares: 100,
		SellTargetPrice: 10.8,
		CreatedAt:       Date(2025, time.January, 2),
	}
}

// WithBuyPrice sets the buy price.
func (b *WalletBuilder) WithBuyPrice(price float64) *WalletBuilder {
	b.BuyPrice = price
	return b
}

// WithHoldingType sets the swing/hold classification.
func (b *WalletBuilder) WithHoldingType(holdingType string) *WalletBuilder {
	b.HoldingType = holdingType
	return b
}

// WithShares sets total and remaining shares together.
func (b *WalletBuilder) WithShares(total, remaining float64) *WalletBuilder {
	b.TotalShares = total
	b.RemainingShares = remaining
	b.SharesSold = total - remaining
	return b
}

// WithInvestment sets total investment.
func (b *WalletBuilder) WithInvestment(investment float64) *WalletBuilder {
	b.TotalInvestment = investment
	return b
}

// WithRealizedPL sets accumulated realized profit/loss.
func (b *WalletBuilder) WithRealizedPL(pl float64) *WalletBuilder {
	b.RealizedPL = pl
	return b
}

// WithSellTarget sets the target sell price.
func (b *WalletBuilder) WithSellTarget(price float64) *WalletBuilder {
	b.SellTargetPrice = price
	return b
}

// WithCreatedAt dates the wallet's originating buy, which determines whether
// a split adjusts it.
func (b *WalletBuilder) WithCreatedAt(createdAt time.Time) *WalletBuilder {
	b.CreatedAt = createdAt
	return b
}

// Build creates the wallet in the database and returns it.
func (b *WalletBuilder) Build(t *testing.T, db *sql.DB) model.Wallet {
	t.Helper()

	query := `
		INSERT INTO wallet (id, asset_id, profit_target_id, buy_price, holding_type,
			total_shares, total_investment, shares_sold, remaining_shares, realized_pl,
			sell_target_price, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.AssetID, b.ProfitTargetID, b.BuyPrice, b.HoldingType,
		b.TotalShares, b.TotalInvestment, b.SharesSold, b.RemainingShares, b.RealizedPL,
		b.SellTargetPrice, b.CreatedAt.Format("2006-01-02"))
	if err != nil {
		t.Fatalf("Failed to create test wallet: %v", err)
	}

	return model.Wallet{
		ID:              b.ID,
		AssetID:         b.AssetID,
		ProfitTargetID:  b.ProfitTargetID,
		BuyPrice:        b.BuyPrice,
		HoldingType:     b.HoldingType,
		TotalShares:     b.TotalShares,
		TotalInvestment: b.TotalInvestment,
		SharesSold:      b.SharesSold,
		RemainingShares: b.RemainingShares,
		RealizedPL:      b.RealizedPL,
		SellTargetPrice: b.SellTargetPrice,
		CreatedAt:       b.CreatedAt,
	}
}

// TransactionBuilder provides a fluent interface for creating test transactions.
type TransactionBuilder struct {
	ID          string
	AssetID     string
	Action      string
	Date        time.Time
	Price       float64
	Quantity    float64
	Investment  float64
	Amount      float64
	SplitRatio  float64
	HoldingType string
	WalletID    string
}

// NewTransaction creates a TransactionBuilder for the given asset: a buy of
// 100 shares at $10 dated 2025-01-02.
func NewTransaction(assetID string) *TransactionBuilder {
	return &TransactionBuilder{
		ID:          MakeID(),
		AssetID:     assetID,
		Action:      model.ActionBuy,
		Date:        Date(2025, time.January, 2),
		Price:       10,
		Quantity:    100,
		Investment:  1000,
		HoldingType: model.HoldingTypeSwing,
	}
}

// WithAction sets the ledger action.
func (b *TransactionBuilder) WithAction(action string) *TransactionBuilder {
	b.Action = action
	return b
}

// WithDate sets the transaction date.
func (b *TransactionBuilder) WithDate(date time.Time) *TransactionBuilder {
	b.Date = date
	return b
}

// WithPrice sets the per-share price.
func (b *TransactionBuilder) WithPrice(price float64) *TransactionBuilder {
	b.Price = price
	return b
}

// WithQuantity sets the share quantity.
func (b *TransactionBuilder) WithQuantity(quantity float64) *TransactionBuilder {
	b.Quantity = quantity
	return b
}

// WithInvestment sets the invested amount.
func (b *TransactionBuilder) WithInvestment(investment float64) *TransactionBuilder {
	b.Investment = investment
	return b
}

// WithAmount sets the cash amount for dividend/SLP rows.
func (b *TransactionBuilder) WithAmount(amount float64) *TransactionBuilder {
	b.Amount = amount
	return b
}

// WithSplitRatio sets the ratio for split rows.
func (b *TransactionBuilder) WithSplitRatio(ratio float64) *TransactionBuilder {
	b.SplitRatio = ratio
	return b
}

// WithWallet links a sell row to the wallet it closes.
func (b *TransactionBuilder) WithWallet(walletID string) *TransactionBuilder {
	b.WalletID = walletID
	return b
}

// Build creates the transaction in the database and returns it.
func (b *TransactionBuilder) Build(t *testing.T, db *sql.DB) model.Transaction {
	t.Helper()

	query := `
		INSERT INTO "txn" (id, asset_id, action, txn_date, price, quantity, investment,
			amount, split_ratio, holding_type, wallet_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var holdingType, walletID any
	if b.HoldingType != "" {
		holdingType = b.HoldingType
	}
	if b.WalletID != "" {
		walletID = b.WalletID
	}

	_, err := db.Exec(query, b.ID, b.AssetID, b.Action, b.Date.Format("2006-01-02"),
		b.Price, b.Quantity, b.Investment, b.Amount, b.SplitRatio, holdingType, walletID)
	if err != nil {
		t.Fatalf("Failed to create test transaction: %v", err)
	}

	return model.Transaction{
		ID:          b.ID,
		AssetID:     b.AssetID,
		Action:      b.Action,
		Date:        b.Date,
		Price:       b.Price,
		Quantity:    b.Quantity,
		Investment:  b.Investment,
		Amount:      b.Amount,
		SplitRatio:  b.SplitRatio,
		HoldingType: b.HoldingType,
		WalletID:    b.WalletID,
	}
}

// CreatePrice stores one daily close for an asset.
func CreatePrice(t *testing.T, db *sql.DB, assetID string, date time.Time, price float64) model.AssetPrice {
	t.Helper()

	p := model.AssetPrice{
		ID:      MakeID(),
		AssetID: assetID,
		Date:    date,
		Price:   price,
	}

	_, err := db.Exec(`INSERT INTO asset_price (id, asset_id, date, price) VALUES (?, ?, ?, ?)`,
		p.ID, p.AssetID, p.Date.Format("2006-01-02"), p.Price)
	if err != nil {
		t.Fatalf("Failed to create test price: %v", err)
	}

	return p
}

// CreatePriceSeries stores consecutive daily closes ending at endDate,
// oldest first in the returned slice.
func CreatePriceSeries(t *testing.T, db *sql.DB, assetID string, endDate time.Time, prices []float64) []model.AssetPrice {
	t.Helper()

	series := make([]model.AssetPrice, len(prices))
	for i, price := range prices {
		date := endDate.AddDate(0, 0, i-len(prices)+1)
		series[i] = CreatePrice(t, db, assetID, date, price)
	}
	return series
}
