package conversion

import (
	"context"
	"fmt"
	"time"

	"virdispay/internal/adapters"
	"virdispay/internal/domain"
)

const (
	defaultPage     = 1
	defaultPageSize = 20
	maxPageSize     = 100
)

// StatsPeriods maps the accepted period tokens to their window length.
var StatsPeriods = map[string]time.Duration{
	"7d":  7 * 24 * time.Hour,
	"30d": 30 * 24 * time.Hour,
	"90d": 90 * 24 * time.Hour,
}

// HistoryService exposes paginated history and aggregate statistics over a
// merchant's conversion records.
type HistoryService struct {
	repo adapters.ConversionRepository
	now  func() time.Time
}

func NewHistoryService(repo adapters.ConversionRepository) *HistoryService {
	return &HistoryService{repo: repo, now: time.Now}
}

// List returns one page of conversions, newest initiated first.
func (s *HistoryService) List(ctx context.Context, merchantID string, filter domain.HistoryFilter) (*domain.HistoryPage, error) {
	if filter.Page < 1 {
		filter.Page = defaultPage
	}
	if filter.PageSize < 1 {
		filter.PageSize = defaultPageSize
	}
	if filter.PageSize > maxPageSize {
		filter.PageSize = maxPageSize
	}

	items, total, err := s.repo.ListByMerchant(ctx, merchantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversions: %w", err)
	}

	pages := total / filter.PageSize
	if total%filter.PageSize != 0 {
		pages++
	}
	return &domain.HistoryPage{
		Items: items,
		Pagination: domain.Pagination{
			Current: filter.Page,
			Pages:   pages,
			Total:   total,
		},
	}, nil
}

// Stats aggregates conversions initiated within the period window. period is
// one of "7d", "30d", "90d".
func (s *HistoryService) Stats(ctx context.Context, merchantID string, period string) (domain.ConversionStats, error) {
	window, ok := StatsPeriods[period]
	if !ok {
		return domain.ConversionStats{}, fmt.Errorf("invalid stats period %q", period)
	}
	since := s.now().Add(-window)
	stats, err := s.repo.StatsByMerchant(ctx, merchantID, since)
	if err != nil {
		return domain.ConversionStats{}, fmt.Errorf("failed to aggregate conversion stats: %w", err)
	}
	return stats, nil
}
