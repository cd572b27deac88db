package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"virdispay/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SettingsRepository struct {
	pool *pgxpool.Pool
}

func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

const settingsColumns = `
	merchant_id, auto_convert_enabled, conversion_threshold, preferred_fiat_currency,
	banking_info, limits, supported_cryptos, is_active, created_at, updated_at
`

func (r *SettingsRepository) Get(ctx context.Context, merchantID string) (*domain.ConversionSettings, error) {
	q := `select ` + settingsColumns + ` from conversion_settings where merchant_id = $1;`

	row := r.pool.QueryRow(ctx, q, merchantID)
	settings, err := scanSettings(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSettingsNotFound
		}
		return nil, fmt.Errorf("failed to select settings for merchant %q: %w", merchantID, err)
	}
	return settings, nil
}

func (r *SettingsRepository) Upsert(ctx context.Context, s *domain.ConversionSettings) (*domain.ConversionSettings, error) {
	banking, limits, cryptos, err := marshalSettingsFields(s)
	if err != nil {
		return nil, err
	}

	q := `
		insert into conversion_settings (
			merchant_id, auto_convert_enabled, conversion_threshold, preferred_fiat_currency,
			banking_info, limits, supported_cryptos, is_active, created_at, updated_at
		) values ($1, $2, $3, $4, $5, $6, $7, true, now(), now())
		on conflict (merchant_id) do update set
			auto_convert_enabled = excluded.auto_convert_enabled,
			conversion_threshold = excluded.conversion_threshold,
			preferred_fiat_currency = excluded.preferred_fiat_currency,
			banking_info = excluded.banking_info,
			limits = excluded.limits,
			supported_cryptos = excluded.supported_cryptos,
			is_active = true,
			updated_at = now()
		returning ` + settingsColumns + `;`

	row := r.pool.QueryRow(ctx, q,
		s.MerchantID, s.AutoConvertEnabled, s.ConversionThreshold, string(s.PreferredFiatCurrency),
		banking, limits, cryptos,
	)
	saved, err := scanSettings(row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert settings for merchant %q: %w", s.MerchantID, err)
	}
	return saved, nil
}

func (r *SettingsRepository) SetAutoConvert(ctx context.Context, merchantID string, enabled bool) (*domain.ConversionSettings, error) {
	q := `
		update conversion_settings
		set auto_convert_enabled = $2, updated_at = now()
		where merchant_id = $1
		returning ` + settingsColumns + `;`

	row := r.pool.QueryRow(ctx, q, merchantID, enabled)
	updated, err := scanSettings(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSettingsNotFound
		}
		return nil, fmt.Errorf("failed to toggle auto-convert for merchant %q: %w", merchantID, err)
	}
	return updated, nil
}

func (r *SettingsRepository) Deactivate(ctx context.Context, merchantID string) error {
	tag, err := r.pool.Exec(ctx,
		`update conversion_settings set is_active = false, updated_at = now() where merchant_id = $1;`,
		merchantID,
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate settings for merchant %q: %w", merchantID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSettingsNotFound
	}
	return nil
}

func marshalSettingsFields(s *domain.ConversionSettings) (banking, limits, cryptos []byte, err error) {
	if banking, err = json.Marshal(s.Banking); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal banking info: %w", err)
	}
	if limits, err = json.Marshal(s.Limits); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal limits: %w", err)
	}
	if cryptos, err = json.Marshal(s.SupportedCryptos); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal supported cryptos: %w", err)
	}
	return banking, limits, cryptos, nil
}

func scanSettings(row pgx.Row) (*domain.ConversionSettings, error) {
	var (
		s       domain.ConversionSettings
		fiat    string
		banking []byte
		limits  []byte
		cryptos []byte
	)
	if err := row.Scan(
		&s.MerchantID, &s.AutoConvertEnabled, &s.ConversionThreshold, &fiat,
		&banking, &limits, &cryptos, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	s.PreferredFiatCurrency = domain.FiatCurrency(fiat)
	if err := json.Unmarshal(banking, &s.Banking); err != nil {
		return nil, fmt.Errorf("failed to unmarshal banking info: %w", err)
	}
	if err := json.Unmarshal(limits, &s.Limits); err != nil {
		return nil, fmt.Errorf("failed to unmarshal limits: %w", err)
	}
	if err := json.Unmarshal(cryptos, &s.SupportedCryptos); err != nil {
		return nil, fmt.Errorf("failed to unmarshal supported cryptos: %w", err)
	}
	return &s, nil
}
