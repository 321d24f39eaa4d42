package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/apperrors"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/model"
)

// TargetRepository provides data access methods for the entry_target and
// profit_target tables.
type TargetRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewTargetRepository creates a new TargetRepository with the provided database connection.
func NewTargetRepository(db *sql.DB) *TargetRepository {
	return &TargetRepository{db: db}
}

// WithTx returns a copy of the repository that routes statements through tx.
func (r *TargetRepository) WithTx(tx *sql.Tx) *TargetRepository {
	return &TargetRepository{db: r.db, tx: tx}
}

func (r *TargetRepository) getQuerier() interface {
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// GetEntryTargets retrieves all entry targets for an asset, lowest sort order first.
func (r *TargetRepository) GetEntryTargets(assetID string) ([]model.EntryTarget, error) {
	query := `
		SELECT id, asset_id, drop_percent, sort_order
		FROM entry_target
		WHERE asset_id = ?
		ORDER BY sort_order ASC, drop_percent ASC
	`

	rows, err := r.getQuerier().Query(query, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entry_target table: %w", err)
	}
	defer rows.Close()

	targets := []model.EntryTarget{}
	for rows.Next() {
		var t model.EntryTarget
		if err := rows.Scan(&t.ID, &t.AssetID, &t.DropPercent, &t.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan entry_target table results: %w", err)
		}
		targets = append(targets, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entry_target table: %w", err)
	}

	return targets, nil
}

// GetEntryTarget retrieves a single entry target by ID.
func (r *TargetRepository) GetEntryTarget(targetID string) (model.EntryTarget, error) {
	query := `
		SELECT id, asset_id, drop_percent, sort_order
		FROM entry_target
		WHERE id = ?
	`

	var t model.EntryTarget
	err := r.getQuerier().QueryRow(query, targetID).Scan(&t.ID, &t.AssetID, &t.DropPercent, &t.SortOrder)
	if err == sql.ErrNoRows {
		return model.EntryTarget{}, apperrors.ErrEntryTargetNotFound
	}
	if err != nil {
		return model.EntryTarget{}, fmt.Errorf("failed to scan entry_target table results: %w", err)
	}

	return t, nil
}

// InsertEntryTarget inserts a new entry target row.
func (r *TargetRepository) InsertEntryTarget(ctx context.Context, t *model.EntryTarget) error {
	query := `
		INSERT INTO entry_target (id, asset_id, drop_percent, sort_order)
		VALUES (?, ?, ?, ?)
	`

	_, err := r.getQuerier().ExecContext(ctx, query, t.ID, t.AssetID, t.DropPercent, t.SortOrder)
	if err != nil {
		return fmt.Errorf("failed to insert entry target: %w", err)
	}

	return nil
}

// UpdateEntryTarget updates an entry target row.
func (r *TargetRepository) UpdateEntryTarget(ctx context.Context, t *model.EntryTarget) error {
	query := `
		UPDATE entry_target
		SET drop_percent = ?, sort_order = ?
		WHERE id = ?
	`

	result, err := r.getQuerier().ExecContext(ctx, query, t.DropPercent, t.SortOrder, t.ID)
	if err != nil {
		return fmt.Errorf("failed to update entry target: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return apperrors.ErrEntryTargetNotFound
	}

	return nil
}

// DeleteEntryTarget removes an entry target row.
func (r *TargetRepository) DeleteEntryTarget(ctx context.Context, targetID string) error {
	result, err := r.getQuerier().ExecContext(ctx, `DELETE FROM entry_target WHERE id = ?`, targetID)
	if err != nil {
		return fmt.Errorf("failed to delete entry target: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return apperrors.ErrEntryTargetNotFound
	}

	return nil
}

// GetProfitTargets retrieves all profit targets for an asset, lowest sort order first.
func (r *TargetRepository) GetProfitTargets(assetID string) ([]model.ProfitTarget, error) {
	query := `
		SELECT id, asset_id, gain_percent, allocation_percent, sort_order
		FROM profit_target
		WHERE asset_id = ?
		ORDER BY sort_order ASC, gain_percent ASC
	`

	rows, err := r.getQuerier().Query(query, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query profit_target table: %w", err)
	}
	defer rows.Close()

	targets := []model.ProfitTarget{}
	for rows.Next() {
		var t model.ProfitTarget
		if err := rows.Scan(&t.ID, &t.AssetID, &t.GainPercent, &t.AllocationPercent, &t.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan profit_target table results: %w", err)
		}
		targets = append(targets, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profit_target table: %w", err)
	}

	return targets, nil
}

// GetProfitTarget retrieves a single profit target by ID.
func (r *TargetRepository) GetProfitTarget(targetID string) (model.ProfitTarget, error) {
	query := `
		SELECT id, asset_id, gain_percent, allocation_percent, sort_order
		FROM profit_target
		WHERE id = ?
	`

	var t model.ProfitTarget
	err := r.getQuerier().QueryRow(query, targetID).Scan(&t.ID, &t.AssetID, &t.GainPercent, &t.AllocationPercent, &t.SortOrder)
	if err == sql.ErrNoRows {
		return model.ProfitTarget{}, apperrors.ErrProfitTargetNotFound
	}
	if err != nil {
		return model.ProfitTarget{}, fmt.Errorf("failed to scan profit_target table results: %w", err)
	}

	return t, nil
}

// InsertProfitTarget inserts a new profit target row.
func (r *TargetRepository) InsertProfitTarget(ctx context.Context, t *model.ProfitTarget) error {
	query := `
		INSERT INTO profit_target (id, asset_id, gain_percent, allocation_percent, sort_order)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.getQuerier().ExecContext(ctx, query, t.ID, t.AssetID, t.GainPercent, t.AllocationPercent, t.SortOrder)
	if err != nil {
		return fmt.Errorf("failed to insert profit target: %w", err)
	}

	return nil
}

// UpdateProfitTarget updates a profit target row.
func (r *TargetRepository) UpdateProfitTarget(ctx context.Context, t *model.ProfitTarget) error {
	query := `
		UPDATE profit_target
		SET gain_percent = ?, allocation_percent = ?, sort_order = ?
		WHERE id = ?
	`

	result, err := r.getQuerier().ExecContext(ctx, query, t.GainPercent, t.AllocationPercent, t.SortOrder, t.ID)
	if err != nil {
		return fmt.Errorf("failed to update profit target: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return apperrors.ErrProfitTargetNotFound
	}

	return nil
}

// DeleteProfitTarget removes a profit target row.
func (r *TargetRepository) DeleteProfitTarget(ctx context.Context, targetID string) error {
	result, err := r.getQuerier().ExecContext(ctx, `DELETE FROM profit_target WHERE id = ?`, targetID)
	if err != nil {
		return fmt.Errorf("failed to delete profit target: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return apperrors.ErrProfitTargetNotFound
	}

	return nil
}
