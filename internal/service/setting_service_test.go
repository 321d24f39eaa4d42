package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/apperrors"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/repository"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/service"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/testutil"
)

// TestSettingService_Secrets tests encrypted setting storage.
//
// WHY: The feed API key must never land in the database in plain text. The
// round trip through fernet has to give back the original value, and a
// service without a key must refuse secret operations instead of silently
// storing plain text.
func TestSettingService_Secrets(t *testing.T) {
	ctx := context.Background()

	t.Run("round-trips a secret value", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSettingService(t, db)

		if err := svc.SetSecret(ctx, service.SettingFeedAPIKey, "super-secret"); err != nil {
			t.Fatalf("SetSecret() returned unexpected error: %v", err)
		}

		got, err := svc.GetSecret(service.SettingFeedAPIKey)
		if err != nil {
			t.Fatalf("GetSecret() returned unexpected error: %v", err)
		}
		if got != "super-secret" {
			t.Errorf("GetSecret() = %q, want %q", got, "super-secret")
		}
	})

	t.Run("stored value is not plain text", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSettingService(t, db)

		if err := svc.SetSecret(ctx, service.SettingFeedAPIKey, "super-secret"); err != nil {
			t.Fatalf("SetSecret() returned unexpected error: %v", err)
		}

		raw, err := svc.GetValue(service.SettingFeedAPIKey)
		if err != nil {
			t.Fatalf("GetValue() returned unexpected error: %v", err)
		}
		if raw == "super-secret" {
			t.Error("Secret was stored in plain text")
		}
	})

	t.Run("refuses secrets without a fernet key", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc, err := service.NewSettingService(repository.NewSettingRepository(db), "")
		if err != nil {
			t.Fatalf("NewSettingService() returned unexpected error: %v", err)
		}

		if err := svc.SetSecret(ctx, "k", "v"); !errors.Is(err, apperrors.ErrNoFernetKey) {
			t.Errorf("Expected ErrNoFernetKey on set, got %v", err)
		}
		if _, err := svc.GetSecret("k"); !errors.Is(err, apperrors.ErrNoFernetKey) {
			t.Errorf("Expected ErrNoFernetKey on get, got %v", err)
		}
	})

	t.Run("rejects a malformed fernet key", func(t *testing.T) {
		db := testutil.SetupTestDB(t)

		if _, err := service.NewSettingService(repository.NewSettingRepository(db), "not-a-key"); err == nil {
			t.Error("Expected error for malformed fernet key, got nil")
		}
	})
}

// TestSettingService_FeedAPIKey tests the feed-key convenience accessor.
func TestSettingService_FeedAPIKey(t *testing.T) {
	ctx := context.Background()

	t.Run("empty when unconfigured", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSettingService(t, db)

		key, err := svc.FeedAPIKey()
		if err != nil {
			t.Fatalf("FeedAPIKey() returned unexpected error: %v", err)
		}
		if key != "" {
			t.Errorf("FeedAPIKey() = %q, want empty", key)
		}
	})

	t.Run("returns the stored key", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSettingService(t, db)

		if err := svc.SetSecret(ctx, service.SettingFeedAPIKey, "feed-key-123"); err != nil {
			t.Fatalf("SetSecret() returned unexpected error: %v", err)
		}

		key, err := svc.FeedAPIKey()
		if err != nil {
			t.Fatalf("FeedAPIKey() returned unexpected error: %v", err)
		}
		if key != "feed-key-123" {
			t.Errorf("FeedAPIKey() = %q, want feed-key-123", key)
		}
	})

	t.Run("overwriting replaces the key", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSettingService(t, db)

		if err := svc.SetSecret(ctx, service.SettingFeedAPIKey, "old"); err != nil {
			t.Fatalf("SetSecret() returned unexpected error: %v", err)
		}
		if err := svc.SetSecret(ctx, service.SettingFeedAPIKey, "new"); err != nil {
			t.Fatalf("SetSecret() returned unexpected error: %v", err)
		}

		key, err := svc.FeedAPIKey()
		if err != nil {
			t.Fatalf("FeedAPIKey() returned unexpected error: %v", err)
		}
		if key != "new" {
			t.Errorf("FeedAPIKey() = %q, want new", key)
		}
	})
}
