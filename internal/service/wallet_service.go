package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/apperrors"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/model"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/repository"
)

// Allocation pairs a profit target with the percent of a buy's investment
// routed to that target's wallet bucket.
type Allocation struct {
	Target  model.ProfitTarget
	Percent float64
}

// WalletService is the lot-accounting engine. It owns every mutation of the
// wallet table: allocating buys across profit-target buckets, reducing
// buckets on sells, and rewriting prices and share counts on splits.
//
// Mutating methods operate inside a caller-supplied *sql.Tx so a ledger entry
// and its wallet effects commit or roll back together.
type WalletService struct {
	walletRepo *repository.WalletRepository
	targetRepo *repository.TargetRepository
}

// NewWalletService creates a new WalletService with the provided repository dependencies.
func NewWalletService(
	walletRepo *repository.WalletRepository,
	targetRepo *repository.TargetRepository,
) *WalletService {
	return &WalletService{
		walletRepo: walletRepo,
		targetRepo: targetRepo,
	}
}

// GetWallet retrieves a single wallet by ID.
func (s *WalletService) GetWallet(walletID string) (model.Wallet, error) {
	return s.walletRepo.GetWallet(walletID)
}

// GetWalletsByAsset retrieves an asset's wallets, optionally only those with
// remaining shares.
func (s *WalletService) GetWalletsByAsset(assetID string, activeOnly bool) ([]model.Wallet, error) {
	return s.walletRepo.GetWalletsByAsset(assetID, activeOnly)
}

// GetAllWallets retrieves all wallets with their asset symbol and target
// gain, optionally only those with remaining shares.
func (s *WalletService) GetAllWallets(activeOnly bool) ([]model.WalletResponse, error) {
	return s.walletRepo.GetAllWalletResponses(activeOnly)
}

// SellTargetPrice computes the price at which a wallet hits its profit
// target: buy price grown by the target gain, grossed up for the sale
// commission so the net gain still lands on target.
func SellTargetPrice(buyPrice, gainPercent, commissionPct float64) float64 {
	return buyPrice * (1 + gainPercent/100) * (1 + commissionPct/100)
}

// AllocateBuy splits a buy's investment across the given profit-target
// allocations and applies each slice to its wallet bucket.
//
// For each allocation: slice = investment × percent/100, shares = slice/price.
// If a wallet already exists for (asset, target, price) its totals are
// incremented; otherwise a new wallet is created dated to the buy, with the
// sell target derived from the target's gain percent. Callers must have
// validated that the percents sum to 100.
func (s *WalletService) AllocateBuy(
	ctx context.Context,
	tx *sql.Tx,
	asset model.Asset,
	buyDate time.Time,
	price, investment float64,
	holdingType string,
	allocations []Allocation,
) ([]model.Wallet, error) {
	if len(allocations) == 0 {
		return nil, apperrors.ErrAllocationSum
	}

	walletRepo := s.walletRepo.WithTx(tx)
	wallets := make([]model.Wallet, 0, len(allocations))

	for _, alloc := range allocations {
		sliceInvestment := investment * alloc.Percent / 100
		sliceShares := sliceInvestment / price

		wallet, err := walletRepo.FindWalletByKey(asset.ID, alloc.Target.ID, price)
		switch {
		case err == nil:
			wallet.TotalShares = roundShares(wallet.TotalShares + sliceShares)
			wallet.RemainingShares = roundShares(wallet.RemainingShares + sliceShares)
			wallet.TotalInvestment += sliceInvestment
			if err := walletRepo.UpdateWallet(ctx, &wallet); err != nil {
				return nil, err
			}
		case err == apperrors.ErrWalletNotFound:
			wallet = model.Wallet{
				ID:              uuid.New().String(),
				AssetID:         asset.ID,
				ProfitTargetID:  alloc.Target.ID,
				BuyPrice:        price,
				HoldingType:     holdingType,
				TotalShares:     roundShares(sliceShares),
				TotalInvestment: sliceInvestment,
				RemainingShares: roundShares(sliceShares),
				SellTargetPrice: SellTargetPrice(price, alloc.Target.GainPercent, asset.CommissionPct),
				CreatedAt:       buyDate,
			}
			if err := walletRepo.InsertWallet(ctx, &wallet); err != nil {
				return nil, err
			}
		default:
			return nil, err
		}

		wallets = append(wallets, wallet)
	}

	return wallets, nil
}

// ReduceOnSell applies a sell of quantity shares at sellPrice against one
// wallet. The quantity must not exceed the wallet's remaining shares.
//
// Realized P/L is quantity × (sellPrice − buyPrice) minus the sale
// commission on the proceeds. Returns the updated wallet and the realized
// amount for this sale.
func (s *WalletService) ReduceOnSell(
	ctx context.Context,
	tx *sql.Tx,
	asset model.Asset,
	walletID string,
	quantity, sellPrice float64,
) (model.Wallet, float64, error) {
	walletRepo := s.walletRepo.WithTx(tx)

	wallet, err := walletRepo.GetWallet(walletID)
	if err != nil {
		return model.Wallet{}, 0, err
	}

	if wallet.AssetID != asset.ID {
		return model.Wallet{}, 0, fmt.Errorf("%w: wallet %s belongs to asset %s",
			apperrors.ErrWalletAssetMismatch, wallet.ID, wallet.AssetID)
	}

	if quantity > wallet.RemainingShares+ShareEpsilon {
		return model.Wallet{}, 0, fmt.Errorf("%w: %.5f requested, %.5f remaining",
			apperrors.ErrInsufficientShares, quantity, wallet.RemainingShares)
	}

	proceeds := quantity * sellPrice
	fee := proceeds * asset.CommissionPct / 100
	realized := quantity*(sellPrice-wallet.BuyPrice) - fee

	wallet.RemainingShares = roundShares(wallet.RemainingShares - quantity)
	if wallet.RemainingShares < 0 {
		wallet.RemainingShares = 0
	}
	wallet.SharesSold = roundShares(wallet.SharesSold + quantity)
	wallet.RealizedPL += realized

	if err := walletRepo.UpdateWallet(ctx, &wallet); err != nil {
		return model.Wallet{}, 0, err
	}

	return wallet, realized, nil
}

// ApplySplit adjusts every wallet whose originating buy predates splitDate
// for a split of the given ratio: share counts multiply by the ratio, buy
// price and sell target price divide by it, investment stays unchanged.
// Wallets created on or after the split date are untouched.
//
// Returns the number of wallets adjusted.
func (s *WalletService) ApplySplit(
	ctx context.Context,
	tx *sql.Tx,
	assetID string,
	ratio float64,
	splitDate time.Time,
) (int, error) {
	return s.adjustForSplit(ctx, tx, assetID, ratio, splitDate)
}

// ReverseSplit undoes a previously applied split, restoring pre-split prices
// and share counts. Only valid when no transaction postdates the split,
// which the transaction service guarantees before deleting the split row.
func (s *WalletService) ReverseSplit(
	ctx context.Context,
	tx *sql.Tx,
	assetID string,
	ratio float64,
	splitDate time.Time,
) (int, error) {
	return s.adjustForSplit(ctx, tx, assetID, 1/ratio, splitDate)
}

func (s *WalletService) adjustForSplit(
	ctx context.Context,
	tx *sql.Tx,
	assetID string,
	ratio float64,
	splitDate time.Time,
) (int, error) {
	walletRepo := s.walletRepo.WithTx(tx)

	wallets, err := walletRepo.GetWalletsByAsset(assetID, false)
	if err != nil {
		return 0, err
	}

	splitDay := splitDate.UTC().Truncate(24 * time.Hour)

	// Rewriting buy_price must not land two wallets on the same composite
	// key, which happens when a backdated split moves a wallet onto the
	// price of one created after the split date.
	type walletKey struct {
		targetID string
		price    float64
	}
	finalKeys := make(map[walletKey]string, len(wallets))
	for _, w := range wallets {
		key := walletKey{targetID: w.ProfitTargetID, price: w.BuyPrice}
		if w.CreatedAt.UTC().Truncate(24 * time.Hour).Before(splitDay) {
			key.price = w.BuyPrice / ratio
		}
		if otherID, ok := finalKeys[key]; ok {
			return 0, fmt.Errorf("%w: wallets %s and %s would share buy price %.5f",
				apperrors.ErrSplitWalletCollision, otherID, w.ID, key.price)
		}
		finalKeys[key] = w.ID
	}

	adjusted := 0

	for _, w := range wallets {
		if !w.CreatedAt.UTC().Truncate(24 * time.Hour).Before(splitDay) {
			continue
		}

		w.TotalShares = roundShares(w.TotalShares * ratio)
		w.SharesSold = roundShares(w.SharesSold * ratio)
		w.RemainingShares = roundShares(w.RemainingShares * ratio)
		w.BuyPrice /= ratio
		w.SellTargetPrice /= ratio

		if err := walletRepo.UpdateWallet(ctx, &w); err != nil {
			return adjusted, err
		}
		adjusted++
	}

	return adjusted, nil
}
