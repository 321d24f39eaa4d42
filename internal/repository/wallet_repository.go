package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/apperrors"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/model"
)

// WalletRepository provides data access methods for the wallet table.
// Wallet identity is the composite key (asset_id, profit_target_id, buy_price);
// the unique constraint on those columns keeps one bucket per key.
type WalletRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewWalletRepository creates a new WalletRepository with the provided database connection.
func NewWalletRepository(db *sql.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// WithTx returns a copy of the repository that routes statements through tx.
func (r *WalletRepository) WithTx(tx *sql.Tx) *WalletRepository {
	return &WalletRepository{db: r.db, tx: tx}
}

func (r *WalletRepository) getQuerier() interface {
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const walletColumns = `id, asset_id, profit_target_id, buy_price, holding_type,
	total_shares, total_investment, shares_sold, remaining_shares, realized_pl,
	sell_target_price, created_at`

// GetWallet retrieves a single wallet by ID.
// Returns apperrors.ErrWalletNotFound if no such wallet exists.
func (r *WalletRepository) GetWallet(walletID string) (model.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallet WHERE id = ?`

	w, err := scanWallet(r.getQuerier().QueryRow(query, walletID))
	if err == sql.ErrNoRows {
		return model.Wallet{}, apperrors.ErrWalletNotFound
	}
	if err != nil {
		return model.Wallet{}, err
	}

	return w, nil
}

// FindWalletByKey looks up a wallet by its composite key.
// Returns apperrors.ErrWalletNotFound when no wallet exists for the key.
func (r *WalletRepository) FindWalletByKey(assetID, profitTargetID string, buyPrice float64) (model.Wallet, error) {
	query := `
		SELECT ` + walletColumns + `
		FROM wallet
		WHERE asset_id = ? AND profit_target_id = ? AND buy_price = ?
	`

	w, err := scanWallet(r.getQuerier().QueryRow(query, assetID, profitTargetID, buyPrice))
	if err == sql.ErrNoRows {
		return model.Wallet{}, apperrors.ErrWalletNotFound
	}
	if err != nil {
		return model.Wallet{}, err
	}

	return w, nil
}

// GetWalletsByAsset retrieves all wallets for an asset, oldest buy price bucket first.
// When activeOnly is set, wallets whose remaining shares have reached zero are omitted.
func (r *WalletRepository) GetWalletsByAsset(assetID string, activeOnly bool) ([]model.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallet WHERE asset_id = ?`
	if activeOnly {
		query += ` AND remaining_shares > 0.00001`
	}
	query += ` ORDER BY created_at ASC, buy_price ASC`

	return r.queryWallets(query, assetID)
}

// GetWalletsByProfitTarget retrieves all wallets under one profit target.
func (r *WalletRepository) GetWalletsByProfitTarget(profitTargetID string) ([]model.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallet WHERE profit_target_id = ? ORDER BY buy_price ASC`
	return r.queryWallets(query, profitTargetID)
}

// GetAllWalletResponses retrieves every wallet joined with its asset's
// symbol and its profit target's gain percent, ordered by symbol then buy
// price. When activeOnly is set, closed wallets are omitted.
func (r *WalletRepository) GetAllWalletResponses(activeOnly bool) ([]model.WalletResponse, error) {
	query := `
		SELECT w.id, w.asset_id, w.profit_target_id, w.buy_price, w.holding_type,
			w.total_shares, w.total_investment, w.shares_sold, w.remaining_shares,
			w.realized_pl, w.sell_target_price, w.created_at,
			a.symbol, pt.gain_percent
		FROM wallet w
		JOIN asset a ON w.asset_id = a.id
		JOIN profit_target pt ON w.profit_target_id = pt.id`
	if activeOnly {
		query += ` WHERE w.remaining_shares > 0.00001`
	}
	query += ` ORDER BY a.symbol ASC, w.buy_price ASC`

	rows, err := r.getQuerier().Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query wallet table: %w", err)
	}
	defer rows.Close()

	responses := []model.WalletResponse{}
	for rows.Next() {
		var resp model.WalletResponse
		var createdAtStr sql.NullString

		err := rows.Scan(
			&resp.ID,
			&resp.AssetID,
			&resp.ProfitTargetID,
			&resp.BuyPrice,
			&resp.HoldingType,
			&resp.TotalShares,
			&resp.TotalInvestment,
			&resp.SharesSold,
			&resp.RemainingShares,
			&resp.RealizedPL,
			&resp.SellTargetPrice,
			&createdAtStr,
			&resp.AssetSymbol,
			&resp.GainPercent,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wallet table results: %w", err)
		}
		if createdAtStr.Valid {
			resp.CreatedAt, err = ParseTime(createdAtStr.String)
			if err != nil {
				return nil, fmt.Errorf("failed to parse date: %w", err)
			}
		}

		responses = append(responses, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wallet table: %w", err)
	}

	return responses, nil
}

func (r *WalletRepository) queryWallets(query string, args ...any) ([]model.Wallet, error) {
	rows, err := r.getQuerier().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query wallet table: %w", err)
	}
	defer rows.Close()

	wallets := []model.Wallet{}
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, w)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wallet table: %w", err)
	}

	return wallets, nil
}

// InsertWallet inserts a new wallet row. CreatedAt records the originating
// buy's transaction date, which split adjustments compare against.
func (r *WalletRepository) InsertWallet(ctx context.Context, w *model.Wallet) error {
	query := `
		INSERT INTO wallet (id, asset_id, profit_target_id, buy_price, holding_type,
			total_shares, total_investment, shares_sold, remaining_shares, realized_pl,
			sell_target_price, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.getQuerier().ExecContext(ctx, query,
		w.ID, w.AssetID, w.ProfitTargetID, w.BuyPrice, w.HoldingType,
		w.TotalShares, w.TotalInvestment, w.SharesSold, w.RemainingShares, w.RealizedPL,
		w.SellTargetPrice, FormatDate(w.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert wallet: %w", err)
	}

	return nil
}

// UpdateWallet updates the accounting fields of a wallet row. The composite
// key columns change only through split adjustments, which rewrite buy_price
// and sell_target_price together with the share totals.
func (r *WalletRepository) UpdateWallet(ctx context.Context, w *model.Wallet) error {
	query := `
		UPDATE wallet
		SET buy_price = ?, total_shares = ?, total_investment = ?, shares_sold = ?,
			remaining_shares = ?, realized_pl = ?, sell_target_price = ?
		WHERE id = ?
	`

	result, err := r.getQuerier().ExecContext(ctx, query,
		w.BuyPrice, w.TotalShares, w.TotalInvestment, w.SharesSold,
		w.RemainingShares, w.RealizedPL, w.SellTargetPrice, w.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update wallet: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return apperrors.ErrWalletNotFound
	}

	return nil
}

func scanWallet(row rowScanner) (model.Wallet, error) {
	var w model.Wallet
	var createdAtStr sql.NullString

	err := row.Scan(
		&w.ID,
		&w.AssetID,
		&w.ProfitTargetID,
		&w.BuyPrice,
		&w.HoldingType,
		&w.TotalShares,
		&w.TotalInvestment,
		&w.SharesSold,
		&w.RemainingShares,
		&w.RealizedPL,
		&w.SellTargetPrice,
		&createdAtStr,
	)
	if err == sql.ErrNoRows {
		return model.Wallet{}, err
	}
	if err != nil {
		return model.Wallet{}, fmt.Errorf("failed to scan wallet table results: %w", err)
	}

	if createdAtStr.Valid {
		w.CreatedAt, err = ParseTime(createdAtStr.String)
		if err != nil {
			return model.Wallet{}, fmt.Errorf("failed to parse date: %w", err)
		}
	}

	return w, nil
}
