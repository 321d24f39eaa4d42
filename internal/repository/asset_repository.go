package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/apperrors"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/model"
)

// AssetRepository provides data access methods for the asset table.
type AssetRepository struct {
	db *sql.DB
}

// NewAssetRepository creates a new AssetRepository with the provided database connection.
func NewAssetRepository(db *sql.DB) *AssetRepository {
	return &AssetRepository{db: db}
}

// GetAssets retrieves assets matching the filter. Hidden and archived assets
// are excluded unless the filter asks for them. Results are ordered by symbol.
func (r *AssetRepository) GetAssets(filter model.AssetFilter) ([]model.Asset, error) {
	query := `
		SELECT id, symbol, name, asset_type, status, test_price, commission_pct, annual_budget, created_at
		FROM asset
		WHERE 1=1
	`
	if !filter.IncludeHidden {
		query += ` AND status != 'hidden'`
	}
	if !filter.IncludeArchived {
		query += ` AND status != 'archived'`
	}
	query += ` ORDER BY symbol ASC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query asset table: %w", err)
	}
	defer rows.Close()

	assets := []model.Asset{}

	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating asset table: %w", err)
	}

	return assets, nil
}

// GetAsset retrieves a single asset by ID.
// Returns apperrors.ErrAssetNotFound if no such asset exists.
func (r *AssetRepository) GetAsset(assetID string) (model.Asset, error) {
	query := `
		SELECT id, symbol, name, asset_type, status, test_price, commission_pct, annual_budget, created_at
		FROM asset
		WHERE id = ?
	`

	row := r.db.QueryRow(query, assetID)
	a, err := scanAsset(row)
	if err == sql.ErrNoRows {
		return model.Asset{}, apperrors.ErrAssetNotFound
	}
	if err != nil {
		return model.Asset{}, err
	}

	return a, nil
}

// InsertAsset inserts a new asset row.
func (r *AssetRepository) InsertAsset(ctx context.Context, a *model.Asset) error {
	query := `
		INSERT INTO asset (id, symbol, name, asset_type, status, test_price, commission_pct, annual_budget)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.Symbol, a.Name, a.AssetType, a.Status, a.TestPrice, a.CommissionPct, a.AnnualBudget,
	)
	if err != nil {
		return fmt.Errorf("failed to insert asset: %w", err)
	}

	return nil
}

// UpdateAsset updates all mutable fields of an asset row.
func (r *AssetRepository) UpdateAsset(ctx context.Context, a *model.Asset) error {
	query := `
		UPDATE asset
		SET symbol = ?, name = ?, asset_type = ?, status = ?, test_price = ?, commission_pct = ?, annual_budget = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		a.Symbol, a.Name, a.AssetType, a.Status, a.TestPrice, a.CommissionPct, a.AnnualBudget, a.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update asset: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrAssetNotFound
	}

	return nil
}

// DeleteAsset removes an asset row. Cascades take the targets, wallets,
// transactions and prices with it, so callers must check usage first.
func (r *AssetRepository) DeleteAsset(ctx context.Context, assetID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM asset WHERE id = ?`, assetID)
	if err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrAssetNotFound
	}

	return nil
}

// CountTransactions returns the number of ledger entries recorded for an asset.
func (r *AssetRepository) CountTransactions(assetID string) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM "txn" WHERE asset_id = ?`, assetID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count asset transactions: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAsset(row rowScanner) (model.Asset, error) {
	var a model.Asset
	var createdAtStr sql.NullString

	err := row.Scan(
		&a.ID,
		&a.Symbol,
		&a.Name,
		&a.AssetType,
		&a.Status,
		&a.TestPrice,
		&a.CommissionPct,
		&a.AnnualBudget,
		&createdAtStr,
	)
	if err == sql.ErrNoRows {
		return model.Asset{}, err
	}
	if err != nil {
		return model.Asset{}, fmt.Errorf("failed to scan asset table results: %w", err)
	}

	if createdAtStr.Valid {
		a.CreatedAt, err = ParseTime(createdAtStr.String)
		if err != nil {
			return model.Asset{}, fmt.Errorf("failed to parse date: %w", err)
		}
	}

	return a, nil
}
