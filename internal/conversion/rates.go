package conversion

import (
	"context"
	"sync"
	"time"

	"virdispay/internal/adapters"
	"virdispay/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const DefaultStalenessWindow = 5 * time.Minute

// RateCache serves spot exchange rates for every supported asset/fiat pair.
// A snapshot is reused until it passes the staleness window; a failed refresh
// falls back to the last known snapshot, however old. Readers always get a
// consistent immutable snapshot reference.
type RateCache struct {
	client    adapters.PriceClient
	staleness time.Duration
	assets    []domain.CryptoCurrency
	fiats     []domain.FiatCurrency
	now       func() time.Time

	mu       sync.RWMutex
	snapshot *domain.RateSnapshot
}

func NewRateCache(client adapters.PriceClient, staleness time.Duration) *RateCache {
	if staleness <= 0 {
		staleness = DefaultStalenessWindow
	}
	return &RateCache{
		client:    client,
		staleness: staleness,
		assets:    domain.SupportedCryptoCurrencies,
		fiats:     domain.SupportedFiatCurrencies,
		now:       time.Now,
	}
}

// GetRates returns a fresh snapshot, refreshing from the pricing provider
// when the cached one has gone stale.
func (c *RateCache) GetRates(ctx context.Context) (*domain.RateSnapshot, error) {
	c.mu.RLock()
	snap := c.snapshot
	c.mu.RUnlock()

	if snap != nil && snap.Age(c.now()) < c.staleness {
		return snap, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another caller may have refreshed while we waited for the lock.
	if c.snapshot != nil && c.snapshot.Age(c.now()) < c.staleness {
		return c.snapshot, nil
	}

	table, err := c.client.GetSpotPrices(ctx, c.assets, c.fiats)
	if err != nil {
		if c.snapshot != nil {
			// A stale rate beats no rate. The next call retries the refresh.
			logrus.WithError(err).Warn("Rate refresh failed, serving last known snapshot")
			return c.snapshot, nil
		}
		logrus.WithError(err).Error("Rate refresh failed with no snapshot to fall back on")
		return nil, domain.ErrRateUnavailable
	}

	c.snapshot = &domain.RateSnapshot{Rates: table, FetchedAt: c.now()}
	return c.snapshot, nil
}

// Convert prices a crypto amount in the target fiat currency using the
// current snapshot. The fiat amount is rounded to 2 decimals.
func (c *RateCache) Convert(ctx context.Context, amount decimal.Decimal, from domain.CryptoCurrency, to domain.FiatCurrency) (domain.ConversionQuote, error) {
	snap, err := c.GetRates(ctx)
	if err != nil {
		return domain.ConversionQuote{}, err
	}

	prices, ok := snap.Rates[from]
	if !ok {
		return domain.ConversionQuote{}, domain.ErrUnsupportedAsset
	}
	rate, ok := prices[to]
	if !ok {
		return domain.ConversionQuote{}, domain.ErrUnsupportedCurrency
	}

	fiat := amount.Mul(decimal.NewFromFloat(rate)).Round(2)
	return domain.ConversionQuote{
		FiatAmount:   fiat.InexactFloat64(),
		ExchangeRate: rate,
	}, nil
}
