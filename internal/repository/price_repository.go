package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/apperrors"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/model"
)

// PriceRepository provides data access methods for the asset_price table.
type PriceRepository struct {
	db *sql.DB
}

// NewPriceRepository creates a new PriceRepository with the provided database connection.
func NewPriceRepository(db *sql.DB) *PriceRepository {
	return &PriceRepository{db: db}
}

// GetPrices retrieves prices for an asset within the date range, sorted by
// date ascending (oldest first).
func (r *PriceRepository) GetPrices(assetID string, startDate, endDate time.Time) ([]model.AssetPrice, error) {
	query := `
		SELECT id, asset_id, date, price
		FROM asset_price
		WHERE asset_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`

	rows, err := r.db.Query(query, assetID, FormatDate(startDate), FormatDate(endDate))
	if err != nil {
		return nil, fmt.Errorf("failed to query asset_price table: %w", err)
	}
	defer rows.Close()

	return collectPrices(rows)
}

// GetLatestPrice retrieves the most recent stored close for an asset.
// Returns apperrors.ErrPriceNotFound when the asset has no prices.
func (r *PriceRepository) GetLatestPrice(assetID string) (model.AssetPrice, error) {
	query := `
		SELECT id, asset_id, date, price
		FROM asset_price
		WHERE asset_id = ?
		ORDER BY date DESC
		LIMIT 1
	`

	var p model.AssetPrice
	var dateStr string
	err := r.db.QueryRow(query, assetID).Scan(&p.ID, &p.AssetID, &dateStr, &p.Price)
	if err == sql.ErrNoRows {
		return model.AssetPrice{}, apperrors.ErrPriceNotFound
	}
	if err != nil {
		return model.AssetPrice{}, fmt.Errorf("failed to scan asset_price table results: %w", err)
	}

	p.Date, err = ParseTime(dateStr)
	if err != nil {
		return model.AssetPrice{}, fmt.Errorf("failed to parse date: %w", err)
	}

	return p, nil
}

// GetRecentCloses retrieves the last n stored closes for an asset, most
// recent first. Used for the five-day-dip calculation.
func (r *PriceRepository) GetRecentCloses(assetID string, n int) ([]model.AssetPrice, error) {
	query := `
		SELECT id, asset_id, date, price
		FROM asset_price
		WHERE asset_id = ?
		ORDER BY date DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, assetID, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query asset_price table: %w", err)
	}
	defer rows.Close()

	return collectPrices(rows)
}

// InsertPrice inserts a single price row.
func (r *PriceRepository) InsertPrice(ctx context.Context, p model.AssetPrice) error {
	query := `
		INSERT INTO asset_price (id, asset_id, date, price)
		VALUES (?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query, p.ID, p.AssetID, FormatDate(p.Date), p.Price)
	if err != nil {
		return fmt.Errorf("failed to insert asset price: %w", err)
	}

	return nil
}

// InsertPrices batch-inserts price rows in a single statement.
func (r *PriceRepository) InsertPrices(ctx context.Context, prices []model.AssetPrice) error {
	if len(prices) == 0 {
		return nil
	}

	placeholders := make([]string, len(prices))
	args := make([]any, 0, len(prices)*4)
	for i, p := range prices {
		placeholders[i] = "(?, ?, ?, ?)"
		args = append(args, p.ID, p.AssetID, FormatDate(p.Date), p.Price)
	}

	query := `INSERT INTO asset_price (id, asset_id, date, price) VALUES ` + strings.Join(placeholders, ",")

	_, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to batch insert asset prices: %w", err)
	}

	return nil
}

func collectPrices(rows *sql.Rows) ([]model.AssetPrice, error) {
	prices := []model.AssetPrice{}
	for rows.Next() {
		var p model.AssetPrice
		var dateStr string

		if err := rows.Scan(&p.ID, &p.AssetID, &dateStr, &p.Price); err != nil {
			return nil, fmt.Errorf("failed to scan asset_price table results: %w", err)
		}

		var err error
		p.Date, err = ParseTime(dateStr)
		if err != nil || p.Date.IsZero() {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}

		prices = append(prices, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating asset_price table: %w", err)
	}

	return prices, nil
}
