package service

import (
	"context"
	"database/sql"
	"encoding/base64"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/api/request"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/apperrors"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/model"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/repository"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/validation"
)

const (
	// DefaultPageLimit is the transaction page size when the client does not specify one.
	DefaultPageLimit = 50

	// MaxPageLimit caps the page size a client may request.
	MaxPageLimit = 500

	// maxPageIterations bounds internal collect-all-pages loops so a cursor
	// bug cannot spin forever.
	maxPageIterations = 1000
)

// TransactionService orchestrates ledger writes. Every mutating operation
// runs the ledger row and its wallet effects in one database transaction.
type TransactionService struct {
	db              *sql.DB
	transactionRepo *repository.TransactionRepository
	assetRepo       *repository.AssetRepository
	targetRepo      *repository.TargetRepository
	walletService   *WalletService
}

// NewTransactionService creates a new TransactionService with the provided dependencies.
func NewTransactionService(
	db *sql.DB,
	transactionRepo *repository.TransactionRepository,
	assetRepo *repository.AssetRepository,
	targetRepo *repository.TargetRepository,
	walletService *WalletService,
) *TransactionService {
	return &TransactionService{
		db:              db,
		transactionRepo: transactionRepo,
		assetRepo:       assetRepo,
		targetRepo:      targetRepo,
		walletService:   walletService,
	}
}

// GetTransaction retrieves a single transaction by ID.
func (s *TransactionService) GetTransaction(transactionID string) (model.Transaction, error) {
	return s.transactionRepo.GetTransaction(transactionID)
}

// ListTransactions returns one page of the transaction listing, optionally
// scoped to an asset. An empty nextToken starts at the first page.
func (s *TransactionService) ListTransactions(assetID string, limit int, nextToken string) (model.TransactionPage, error) {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	offset, err := decodePageToken(nextToken)
	if err != nil {
		return model.TransactionPage{}, err
	}

	// Fetch one extra row to know whether another page exists.
	rows, err := s.transactionRepo.GetTransactionPage(assetID, offset, limit+1)
	if err != nil {
		return model.TransactionPage{}, err
	}

	page := model.TransactionPage{Transactions: rows}
	if len(rows) > limit {
		page.Transactions = rows[:limit]
		page.NextToken = encodePageToken(offset + limit)
	}

	return page, nil
}

// ListAllTransactions walks every page of the listing and returns the
// combined result. The walk is capped so a cursor defect cannot loop forever.
func (s *TransactionService) ListAllTransactions(assetID string) ([]model.TransactionResponse, error) {
	var all []model.TransactionResponse
	token := ""

	for i := 0; ; i++ {
		if i >= maxPageIterations {
			return nil, apperrors.ErrPaginationLimit
		}

		page, err := s.ListTransactions(assetID, MaxPageLimit, token)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Transactions...)

		if page.NextToken == "" {
			return all, nil
		}
		token = page.NextToken
	}
}

// CreateTransaction validates and records a ledger event, applying its wallet
// effects atomically. Returns the stored transaction.
func (s *TransactionService) CreateTransaction(ctx context.Context, req request.CreateTransactionRequest) (*model.Transaction, error) {
	if err := validation.ValidateCreateTransaction(req); err != nil {
		return nil, err
	}

	date, err := validation.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}

	asset, err := s.assetRepo.GetAsset(req.AssetID)
	if err != nil {
		return nil, err
	}

	txn := &model.Transaction{
		ID:          uuid.New().String(),
		AssetID:     asset.ID,
		Action:      req.Action,
		Date:        date,
		Price:       req.Price,
		Quantity:    req.Quantity,
		Investment:  req.Investment,
		Amount:      req.Amount,
		SplitRatio:  req.SplitRatio,
		HoldingType: req.HoldingType,
		WalletID:    req.WalletID,
	}

	// Resolved before the database transaction starts so the read does not
	// claim a second pool connection while the write connection holds the tx.
	var allocations []Allocation
	if req.Action == model.ActionBuy {
		allocations, err = s.resolveAllocations(asset.ID, req.Allocations)
		if err != nil {
			return nil, err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	switch req.Action {
	case model.ActionBuy:
		txn.Quantity = roundShares(req.Investment / req.Price)
		if err := s.transactionRepo.WithTx(tx).InsertTransaction(ctx, txn); err != nil {
			return nil, err
		}
		if _, err := s.walletService.AllocateBuy(ctx, tx, asset, date, req.Price, req.Investment, req.HoldingType, allocations); err != nil {
			return nil, err
		}

	case model.ActionSell:
		if _, _, err := s.walletService.ReduceOnSell(ctx, tx, asset, req.WalletID, req.Quantity, req.Price); err != nil {
			return nil, err
		}
		if err := s.transactionRepo.WithTx(tx).InsertTransaction(ctx, txn); err != nil {
			return nil, err
		}

	case model.ActionDividend, model.ActionSLP:
		if err := s.transactionRepo.WithTx(tx).InsertTransaction(ctx, txn); err != nil {
			return nil, err
		}

	case model.ActionSplit:
		if err := s.transactionRepo.WithTx(tx).InsertTransaction(ctx, txn); err != nil {
			return nil, err
		}
		if _, err := s.walletService.ApplySplit(ctx, tx, asset.ID, req.SplitRatio, date); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return txn, nil
}

// UpdateTransaction adjusts the date or cash amount of a dividend or SLP row.
// Rows with wallet effects (buy, sell, split) are immutable.
func (s *TransactionService) UpdateTransaction(ctx context.Context, transactionID string, req request.UpdateTransactionRequest) (*model.Transaction, error) {
	if err := validation.ValidateUpdateTransaction(req); err != nil {
		return nil, err
	}

	txn, err := s.transactionRepo.GetTransaction(transactionID)
	if err != nil {
		return nil, err
	}

	if txn.Action != model.ActionDividend && txn.Action != model.ActionSLP {
		return nil, apperrors.ErrTransactionImmutable
	}

	if req.Date != nil {
		date, err := validation.ParseDate(*req.Date)
		if err != nil {
			return nil, err
		}
		txn.Date = date
	}
	if req.Amount != nil {
		txn.Amount = *req.Amount
	}

	if err := s.transactionRepo.UpdateTransaction(ctx, &txn); err != nil {
		return nil, err
	}

	return &txn, nil
}

// DeleteTransaction removes a ledger row. Dividend and SLP rows delete
// cleanly. A split may only be deleted when no transaction postdates it, and
// its wallet adjustments are reversed in the same database transaction.
// Buy and sell rows cannot be deleted.
func (s *TransactionService) DeleteTransaction(ctx context.Context, transactionID string) error {
	txn, err := s.transactionRepo.GetTransaction(transactionID)
	if err != nil {
		return err
	}

	switch txn.Action {
	case model.ActionDividend, model.ActionSLP:
		return s.transactionRepo.DeleteTransaction(ctx, transactionID)

	case model.ActionSplit:
		later, err := s.transactionRepo.CountTransactionsAfter(txn.AssetID, txn.Date)
		if err != nil {
			return err
		}
		if later > 0 {
			return apperrors.ErrSplitHasLaterTransactions
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Rollback()

		if _, err := s.walletService.ReverseSplit(ctx, tx, txn.AssetID, txn.SplitRatio, txn.Date); err != nil {
			return err
		}
		if err := s.transactionRepo.WithTx(tx).DeleteTransaction(ctx, transactionID); err != nil {
			return err
		}

		return tx.Commit()

	default:
		return apperrors.ErrTransactionImmutable
	}
}

// resolveAllocations turns a buy's allocation inputs into target/percent
// pairs, falling back to the asset's configured allocation percents when the
// request carries none. The resolved percents must sum to 100.
func (s *TransactionService) resolveAllocations(assetID string, inputs []request.AllocationInput) ([]Allocation, error) {
	targets, err := s.targetRepo.GetProfitTargets(assetID)
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		return nil, apperrors.ErrAllocationSum
	}

	byID := make(map[string]model.ProfitTarget, len(targets))
	for _, t := range targets {
		byID[t.ID] = t
	}

	var allocations []Allocation
	if len(inputs) == 0 {
		for _, t := range targets {
			allocations = append(allocations, Allocation{Target: t, Percent: t.AllocationPercent})
		}
	} else {
		for _, in := range inputs {
			target, ok := byID[in.ProfitTargetID]
			if !ok {
				return nil, apperrors.ErrProfitTargetNotFound
			}
			allocations = append(allocations, Allocation{Target: target, Percent: in.Percent})
		}
	}

	percents := make([]float64, len(allocations))
	for i, a := range allocations {
		percents[i] = a.Percent
	}
	if !validation.AllocationsSumTo100(percents) {
		return nil, apperrors.ErrAllocationSum
	}

	return allocations, nil
}

func encodePageToken(offset int) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.Itoa(offset)))
}

func decodePageToken(token string) (int, error) {
	if token == "" {
		return 0, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return 0, fmt.Errorf("invalid page token: %w", err)
	}
	offset, err := strconv.Atoi(string(raw))
	if err != nil || offset < 0 {
		return 0, fmt.Errorf("invalid page token: %q", token)
	}

	return offset, nil
}
