package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/apperrors"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/model"
)

// TransactionRepository provides data access methods for the txn table.
// The ledger is append-mostly: rows are inserted, occasionally deleted, and
// only the cash fields of dividend/slp rows are ever updated.
type TransactionRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewTransactionRepository creates a new TransactionRepository with the provided database connection.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// WithTx returns a copy of the repository that routes statements through tx.
func (r *TransactionRepository) WithTx(tx *sql.Tx) *TransactionRepository {
	return &TransactionRepository{db: r.db, tx: tx}
}

func (r *TransactionRepository) getQuerier() interface {
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// GetTransactionsByAsset retrieves all transactions for an asset in date order.
func (r *TransactionRepository) GetTransactionsByAsset(assetID string) ([]model.Transaction, error) {
	query := `
		SELECT id, asset_id, action, txn_date, price, quantity, investment, amount,
			split_ratio, holding_type, wallet_id, created_at
		FROM "txn"
		WHERE asset_id = ?
		ORDER BY txn_date ASC, created_at ASC
	`

	rows, err := r.getQuerier().Query(query, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query txn table: %w", err)
	}
	defer rows.Close()

	transactions := []model.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating txn table: %w", err)
	}

	return transactions, nil
}

// GetTransactionPage retrieves one page of the enriched transaction listing,
// optionally scoped to a single asset. offset/limit implement the next-token
// cursor exposed by the API.
func (r *TransactionRepository) GetTransactionPage(assetID string, offset, limit int) ([]model.TransactionResponse, error) {
	query := `
		SELECT t.id, t.asset_id, t.action, t.txn_date, t.price, t.quantity, t.investment,
			t.amount, t.split_ratio, t.holding_type, t.wallet_id, t.created_at,
			a.symbol, a.name
		FROM "txn" t
		JOIN asset a ON t.asset_id = a.id
	`

	var args []any
	if assetID != "" {
		query += ` WHERE t.asset_id = ?`
		args = append(args, assetID)
	}
	query += ` ORDER BY t.txn_date ASC, t.created_at ASC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.getQuerier().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query txn table: %w", err)
	}
	defer rows.Close()

	responses := []model.TransactionResponse{}
	for rows.Next() {
		var resp model.TransactionResponse
		var dateStr string
		var createdAtStr, holdingType, walletID sql.NullString

		err := rows.Scan(
			&resp.ID,
			&resp.AssetID,
			&resp.Action,
			&dateStr,
			&resp.Price,
			&resp.Quantity,
			&resp.Investment,
			&resp.Amount,
			&resp.SplitRatio,
			&holdingType,
			&walletID,
			&createdAtStr,
			&resp.AssetSymbol,
			&resp.AssetName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan txn table results: %w", err)
		}

		resp.Date, err = ParseTime(dateStr)
		if err != nil || resp.Date.IsZero() {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}
		if createdAtStr.Valid {
			resp.CreatedAt, err = ParseTime(createdAtStr.String)
			if err != nil {
				return nil, fmt.Errorf("failed to parse date: %w", err)
			}
		}
		if holdingType.Valid {
			resp.HoldingType = holdingType.String
		}
		if walletID.Valid {
			resp.WalletID = walletID.String
		}

		responses = append(responses, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating txn table: %w", err)
	}

	return responses, nil
}

// GetTransaction retrieves a single transaction by ID.
// Returns apperrors.ErrTransactionNotFound if no such transaction exists.
func (r *TransactionRepository) GetTransaction(transactionID string) (model.Transaction, error) {
	query := `
		SELECT id, asset_id, action, txn_date, price, quantity, investment, amount,
			split_ratio, holding_type, wallet_id, created_at
		FROM "txn"
		WHERE id = ?
	`

	t, err := scanTransaction(r.getQuerier().QueryRow(query, transactionID))
	if err == sql.ErrNoRows {
		return model.Transaction{}, apperrors.ErrTransactionNotFound
	}
	if err != nil {
		return model.Transaction{}, err
	}

	return t, nil
}

// InsertTransaction inserts a new transaction row.
func (r *TransactionRepository) InsertTransaction(ctx context.Context, t *model.Transaction) error {
	query := `
		INSERT INTO "txn" (id, asset_id, action, txn_date, price, quantity, investment,
			amount, split_ratio, holding_type, wallet_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var holdingType, walletID any
	if t.HoldingType != "" {
		holdingType = t.HoldingType
	}
	if t.WalletID != "" {
		walletID = t.WalletID
	}

	_, err := r.getQuerier().ExecContext(ctx, query,
		t.ID, t.AssetID, t.Action, FormatDate(t.Date), t.Price, t.Quantity,
		t.Investment, t.Amount, t.SplitRatio, holdingType, walletID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	return nil
}

// UpdateTransaction updates the date and cash amount of a transaction row.
func (r *TransactionRepository) UpdateTransaction(ctx context.Context, t *model.Transaction) error {
	query := `
		UPDATE "txn"
		SET txn_date = ?, amount = ?
		WHERE id = ?
	`

	result, err := r.getQuerier().ExecContext(ctx, query, FormatDate(t.Date), t.Amount, t.ID)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return apperrors.ErrTransactionNotFound
	}

	return nil
}

// DeleteTransaction removes a transaction row.
func (r *TransactionRepository) DeleteTransaction(ctx context.Context, transactionID string) error {
	result, err := r.getQuerier().ExecContext(ctx, `DELETE FROM "txn" WHERE id = ?`, transactionID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return apperrors.ErrTransactionNotFound
	}

	return nil
}

// CountTransactionsAfter returns how many of an asset's transactions are
// dated strictly after the given date. Used to guard split deletion.
func (r *TransactionRepository) CountTransactionsAfter(assetID string, date time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM "txn" WHERE asset_id = ? AND txn_date > ?`

	var count int
	err := r.getQuerier().QueryRow(query, assetID, FormatDate(date)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions after date: %w", err)
	}

	return count, nil
}

// GetOldestTransactionDate finds the date of the earliest transaction for an
// asset. Returns time.Time{} if the asset has no transactions.
func (r *TransactionRepository) GetOldestTransactionDate(assetID string) time.Time {
	var oldestDateStr sql.NullString

	err := r.getQuerier().QueryRow(`SELECT MIN(txn_date) FROM "txn" WHERE asset_id = ?`, assetID).Scan(&oldestDateStr)
	if err != nil || !oldestDateStr.Valid {
		return time.Time{}
	}

	oldestDate, err := time.Parse(DateFormat, oldestDateStr.String)
	if err != nil {
		return time.Time{}
	}

	return oldestDate
}

func scanTransaction(row rowScanner) (model.Transaction, error) {
	var t model.Transaction
	var dateStr string
	var createdAtStr, holdingType, walletID sql.NullString

	err := row.Scan(
		&t.ID,
		&t.AssetID,
		&t.Action,
		&dateStr,
		&t.Price,
		&t.Quantity,
		&t.Investment,
		&t.Amount,
		&t.SplitRatio,
		&holdingType,
		&walletID,
		&createdAtStr,
	)
	if err == sql.ErrNoRows {
		return model.Transaction{}, err
	}
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to scan txn table results: %w", err)
	}

	t.Date, err = ParseTime(dateStr)
	if err != nil || t.Date.IsZero() {
		return model.Transaction{}, fmt.Errorf("failed to parse date: %w", err)
	}
	if createdAtStr.Valid {
		t.CreatedAt, err = ParseTime(createdAtStr.String)
		if err != nil {
			return model.Transaction{}, fmt.Errorf("failed to parse date: %w", err)
		}
	}
	if holdingType.Valid {
		t.HoldingType = holdingType.String
	}
	if walletID.Valid {
		t.WalletID = walletID.String
	}

	return t, nil
}
