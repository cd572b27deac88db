package conversion

import (
	"context"
	"time"

	"virdispay/internal/adapters"
	"virdispay/internal/domain"
)

// SettingsService owns merchant conversion settings: reads go through the
// cache, every write validates first and invalidates the cached copy.
type SettingsService struct {
	repo  adapters.SettingsRepository
	cache adapters.SettingsCache
	now   func() time.Time
}

func NewSettingsService(repo adapters.SettingsRepository, cache adapters.SettingsCache) *SettingsService {
	return &SettingsService{repo: repo, cache: cache, now: time.Now}
}

// Get returns the merchant's settings or domain.ErrSettingsNotFound.
func (s *SettingsService) Get(ctx context.Context, merchantID string) (*domain.ConversionSettings, error) {
	if cached, ok := s.cache.Get(merchantID); ok {
		return cached, nil
	}
	settings, err := s.repo.Get(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(merchantID, settings)
	return settings, nil
}

// Save validates and upserts the merchant's settings. Nothing is persisted
// when validation fails; the error lists every violated field.
func (s *SettingsService) Save(ctx context.Context, settings *domain.ConversionSettings) (*domain.ConversionSettings, error) {
	if verr := ValidateSettings(settings); verr != nil {
		return nil, verr
	}
	settings.IsActive = true
	settings.UpdatedAt = s.now()

	saved, err := s.repo.Upsert(ctx, settings)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(settings.MerchantID)
	return saved, nil
}

// ToggleAutoConvert flips the auto-convert flag on existing settings. Fails
// with domain.ErrSettingsNotFound when the merchant has never saved settings.
func (s *SettingsService) ToggleAutoConvert(ctx context.Context, merchantID string, enabled bool) (*domain.ConversionSettings, error) {
	updated, err := s.repo.SetAutoConvert(ctx, merchantID, enabled)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(merchantID)
	return updated, nil
}

// Deactivate soft-deletes the settings. In-flight conversions are unaffected;
// only future conversions stop.
func (s *SettingsService) Deactivate(ctx context.Context, merchantID string) error {
	if err := s.repo.Deactivate(ctx, merchantID); err != nil {
		return err
	}
	s.cache.Invalidate(merchantID)
	return nil
}
