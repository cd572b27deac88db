package cache

import (
	"fmt"

	"virdispay/internal/domain"

	"github.com/dgraph-io/ristretto"
)

// RistrettoSettingsCache caches merchant conversion settings. Entries are
// evicted explicitly on every settings write, so readers may briefly see a
// stale copy only until the write-path invalidation lands.
type RistrettoSettingsCache struct {
	cache *ristretto.Cache
}

func NewSettingsCache(maxItems int64) (*RistrettoSettingsCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10 * maxItems,
		MaxCost:     maxItems,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create settings cache failed: %w", err)
	}
	return &RistrettoSettingsCache{cache: c}, nil
}

func (c *RistrettoSettingsCache) Get(merchantID string) (*domain.ConversionSettings, bool) {
	if v, ok := c.cache.Get(merchantID); ok {
		s, ok := v.(*domain.ConversionSettings)
		return s, ok
	}
	return nil, false
}

func (c *RistrettoSettingsCache) Set(merchantID string, settings *domain.ConversionSettings) {
	c.cache.Set(merchantID, settings, 1)
}

func (c *RistrettoSettingsCache) Invalidate(merchantID string) {
	c.cache.Del(merchantID)
}

func (c *RistrettoSettingsCache) Close() { c.cache.Close() }
