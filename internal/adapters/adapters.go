package adapters

import (
	"context"
	"time"

	"virdispay/internal/domain"
)

// PriceClient fetches spot prices for a set of crypto assets against a set of
// fiat currencies in one batched request.
type PriceClient interface {
	GetSpotPrices(ctx context.Context, assets []domain.CryptoCurrency, fiats []domain.FiatCurrency) (domain.RateTable, error)
}

// PayoutProvider submits a conversion for fiat payout. A declined payout is
// reported via PayoutResult.Success=false; an error return means the rail
// itself failed.
type PayoutProvider interface {
	Submit(ctx context.Context, tx *domain.ConversionTransaction) (domain.PayoutResult, error)
}

type ConversionRepository interface {
	Create(ctx context.Context, tx *domain.ConversionTransaction) error
	Update(ctx context.Context, tx *domain.ConversionTransaction) error
	GetByID(ctx context.Context, conversionID string) (*domain.ConversionTransaction, error)
	ListByMerchant(ctx context.Context, merchantID string, filter domain.HistoryFilter) ([]domain.ConversionTransaction, int, error)
	StatsByMerchant(ctx context.Context, merchantID string, since time.Time) (domain.ConversionStats, error)
	ExistsForPayment(ctx context.Context, paymentID string) (bool, error)
}

type SettingsRepository interface {
	Get(ctx context.Context, merchantID string) (*domain.ConversionSettings, error)
	Upsert(ctx context.Context, settings *domain.ConversionSettings) (*domain.ConversionSettings, error)
	SetAutoConvert(ctx context.Context, merchantID string, enabled bool) (*domain.ConversionSettings, error)
	Deactivate(ctx context.Context, merchantID string) error
}

// PaymentRepository is read-only access to completed payments owned by the
// payment subsystem.
type PaymentRepository interface {
	GetByID(ctx context.Context, paymentID string) (*domain.Payment, error)
	ListUnconverted(ctx context.Context) ([]domain.Payment, error)
}

type SettingsCache interface {
	Get(merchantID string) (*domain.ConversionSettings, bool)
	Set(merchantID string, settings *domain.ConversionSettings)
	Invalidate(merchantID string)
}
