package payout

import (
	"context"
	"math/rand"
	"sync"

	"virdispay/internal/domain"

	"github.com/google/uuid"
)

// SimulatedProvider stands in for a real banking/exchange payout rail. It
// approves a configurable fraction of submissions and declines the rest. A
// production deployment swaps this for a concrete rail behind the same
// interface.
type SimulatedProvider struct {
	successRate float64

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewSimulatedProvider(successRate float64, seed int64) *SimulatedProvider {
	if successRate < 0 || successRate > 1 {
		successRate = 0.95
	}
	return &SimulatedProvider{
		successRate: successRate,
		rnd:         rand.New(rand.NewSource(seed)),
	}
}

func (p *SimulatedProvider) Submit(_ context.Context, _ *domain.ConversionTransaction) (domain.PayoutResult, error) {
	p.mu.Lock()
	roll := p.rnd.Float64()
	p.mu.Unlock()

	if roll >= p.successRate {
		return domain.PayoutResult{
			Success: false,
			Error:   "payout declined by provider",
		}, nil
	}
	return domain.PayoutResult{
		Success:  true,
		PayoutID: "po_" + uuid.NewString(),
	}, nil
}
