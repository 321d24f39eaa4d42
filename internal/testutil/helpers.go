package testutil

import (
	"database/sql"
	"testing"

	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/pricefeed"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/repository"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/service"
)

// TestFernetKey is a valid base64url-encoded 32-byte fernet key for tests.
const TestFernetKey = "cw_0x689RpI-jtRR7oE8h_eQsKImvJapLeSbXpwF4e4="

func NewTestAssetService(t *testing.T, db *sql.DB) *service.AssetService {
	t.Helper()

	return service.NewAssetService(repository.NewAssetRepository(db))
}

func NewTestTargetService(t *testing.T, db *sql.DB) *service.TargetService {
	t.Helper()

	return service.NewTargetService(
		db,
		repository.NewTargetRepository(db),
		repository.NewWalletRepository(db),
		repository.NewAssetRepository(db),
	)
}

func NewTestWalletService(t *testing.T, db *sql.DB) *service.WalletService {
	t.Helper()

	return service.NewWalletService(
		repository.NewWalletRepository(db),
		repository.NewTargetRepository(db),
	)
}

func NewTestTransactionService(t *testing.T, db *sql.DB) *service.TransactionService {
	t.Helper()

	walletService := NewTestWalletService(t, db)

	return service.NewTransactionService(
		db,
		repository.NewTransactionRepository(db),
		repository.NewAssetRepository(db),
		repository.NewTargetRepository(db),
		walletService,
	)
}

func NewTestReportService(t *testing.T, db *sql.DB) *service.ReportService {
	t.Helper()

	return service.NewReportService(
		repository.NewAssetRepository(db),
		repository.NewWalletRepository(db),
		repository.NewTargetRepository(db),
		repository.NewTransactionRepository(db),
		repository.NewPriceRepository(db),
	)
}

// NewTestPriceService creates a PriceService backed by a mock feed client so
// tests never hit the network.
func NewTestPriceService(t *testing.T, db *sql.DB, feedClient pricefeed.Client) *service.PriceService {
	t.Helper()

	return service.NewPriceService(
		repository.NewAssetRepository(db),
		repository.NewPriceRepository(db),
		repository.NewTransactionRepository(db),
		feedClient,
	)
}

func NewTestDipService(t *testing.T, feedClient pricefeed.Client) *service.DipService {
	t.Helper()

	return service.NewDipService(feedClient)
}

func NewTestSettingService(t *testing.T, db *sql.DB) *service.SettingService {
	t.Helper()

	s, err := service.NewSettingService(repository.NewSettingRepository(db), TestFernetKey)
	if err != nil {
		t.Fatalf("Failed to create setting service: %v", err)
	}
	return s
}

func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db)
}
