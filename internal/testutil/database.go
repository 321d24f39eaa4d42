package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite" // Test Package
)

// SetupTestDB creates an in-memory SQLite database for testing.
// The database is automatically cleaned up when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// In-memory database (destroyed when connection closes)
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Each pool connection to :memory: is its own empty database, so
	// everything must share one connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	// Configure SQLite for testing
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = MEMORY", // Faster for tests
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			t.Fatalf("Failed to set pragma: %v", err)
		}
	}

	if err := createTestSchema(db); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// createTestSchema creates all database tables for testing.
// Schema is synchronized with the production migrations.
func createTestSchema(db *sql.DB) error {
	schema := `
		-- Asset table
		CREATE TABLE asset (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			symbol VARCHAR(10) NOT NULL UNIQUE,
			name VARCHAR(100) NOT NULL,
			asset_type VARCHAR(10) NOT NULL,
			status VARCHAR(10) NOT NULL DEFAULT 'active',
			test_price FLOAT NOT NULL DEFAULT 0,
			commission_pct FLOAT NOT NULL DEFAULT 0,
			annual_budget FLOAT NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		-- Entry target table
		CREATE TABLE entry_target (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			asset_id VARCHAR(36) NOT NULL,
			drop_percent FLOAT NOT NULL,
			sort_order INTEGER NOT NULL DEFAULT 0,
			FOREIGN KEY(asset_id) REFERENCES asset(id) ON DELETE CASCADE
		);

		-- Profit target table
		CREATE TABLE profit_target (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			asset_id VARCHAR(36) NOT NULL,
			gain_percent FLOAT NOT NULL,
			allocation_percent FLOAT NOT NULL,
			sort_order INTEGER NOT NULL DEFAULT 0,
			FOREIGN KEY(asset_id) REFERENCES asset(id) ON DELETE CASCADE
		);

		-- Wallet table: one bucket per (asset, profit target, buy price)
		CREATE TABLE wallet (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			asset_id VARCHAR(36) NOT NULL,
			profit_target_id VARCHAR(36) NOT NULL,
			buy_price FLOAT NOT NULL,
			holding_type VARCHAR(5) NOT NULL,
			total_shares FLOAT NOT NULL DEFAULT 0,
			total_investment FLOAT NOT NULL DEFAULT 0,
			shares_sold FLOAT NOT NULL DEFAULT 0,
			remaining_shares FLOAT NOT NULL DEFAULT 0,
			realized_pl FLOAT NOT NULL DEFAULT 0,
			sell_target_price FLOAT NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(asset_id) REFERENCES asset(id) ON DELETE CASCADE,
			FOREIGN KEY(profit_target_id) REFERENCES profit_target(id) ON DELETE CASCADE,
			CONSTRAINT unique_wallet_key UNIQUE (asset_id, profit_target_id, buy_price)
		);

		-- Transaction table (quoted because transaction is a reserved keyword)
		CREATE TABLE "txn" (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			asset_id VARCHAR(36) NOT NULL,
			action VARCHAR(10) NOT NULL,
			txn_date DATE NOT NULL,
			price FLOAT NOT NULL DEFAULT 0,
			quantity FLOAT NOT NULL DEFAULT 0,
			investment FLOAT NOT NULL DEFAULT 0,
			amount FLOAT NOT NULL DEFAULT 0,
			split_ratio FLOAT NOT NULL DEFAULT 0,
			holding_type VARCHAR(5),
			wallet_id VARCHAR(36),
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(asset_id) REFERENCES asset(id) ON DELETE CASCADE,
			FOREIGN KEY(wallet_id) REFERENCES wallet(id)
		);

		-- Asset price table: daily closes from the price feed
		CREATE TABLE asset_price (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			asset_id VARCHAR(36) NOT NULL,
			date DATE NOT NULL,
			price FLOAT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(asset_id) REFERENCES asset(id) ON DELETE CASCADE,
			CONSTRAINT unique_asset_price_date UNIQUE (asset_id, date)
		);

		-- Setting table
		CREATE TABLE setting (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			"key" VARCHAR(30) NOT NULL UNIQUE,
			value VARCHAR(500) NOT NULL,
			updated_at DATETIME
		);
	`

	_, err := db.Exec(schema)
	return err
}
