package service

import (
	"context"
	"fmt"

	"github.com/fernet/fernet-go"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/apperrors"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/repository"
)

// Setting keys.
const (
	SettingFeedAPIKey = "price_feed_api_key"
)

// SettingService stores application settings. Secret values (the price-feed
// API key) are fernet-encrypted at rest with the key from configuration.
type SettingService struct {
	settingRepo *repository.SettingRepository
	fernetKey   *fernet.Key
}

// NewSettingService creates a new SettingService. fernetKey may be empty, in
// which case secret settings cannot be stored or read.
func NewSettingService(settingRepo *repository.SettingRepository, fernetKey string) (*SettingService, error) {
	s := &SettingService{settingRepo: settingRepo}

	if fernetKey != "" {
		key, err := fernet.DecodeKey(fernetKey)
		if err != nil {
			return nil, fmt.Errorf("invalid fernet key: %w", err)
		}
		s.fernetKey = key
	}

	return s, nil
}

// GetValue retrieves a plain setting value.
func (s *SettingService) GetValue(key string) (string, error) {
	return s.settingRepo.GetValue(key)
}

// SetValue stores a plain setting value.
func (s *SettingService) SetValue(ctx context.Context, key, value string) error {
	return s.settingRepo.SetValue(ctx, key, value)
}

// SetSecret encrypts a value with the fernet key and stores it.
func (s *SettingService) SetSecret(ctx context.Context, key, value string) error {
	if s.fernetKey == nil {
		return apperrors.ErrNoFernetKey
	}

	token, err := fernet.EncryptAndSign([]byte(value), s.fernetKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt setting %s: %w", key, err)
	}

	return s.settingRepo.SetValue(ctx, key, string(token))
}

// GetSecret retrieves and decrypts a secret setting. Tokens do not expire;
// the stored value stays valid until overwritten.
func (s *SettingService) GetSecret(key string) (string, error) {
	if s.fernetKey == nil {
		return "", apperrors.ErrNoFernetKey
	}

	stored, err := s.settingRepo.GetValue(key)
	if err != nil {
		return "", err
	}

	plain := fernet.VerifyAndDecrypt([]byte(stored), 0, []*fernet.Key{s.fernetKey})
	if plain == nil {
		return "", fmt.Errorf("failed to decrypt setting %s", key)
	}

	return string(plain), nil
}

// FeedAPIKey returns the decrypted price-feed API key, or "" when none is
// configured.
func (s *SettingService) FeedAPIKey() (string, error) {
	key, err := s.GetSecret(SettingFeedAPIKey)
	if err == apperrors.ErrSettingNotFound {
		return "", nil
	}
	return key, err
}
