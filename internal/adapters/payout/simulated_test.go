package payout

import (
	"context"
	"testing"

	"virdispay/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestSimulatedProvider_AlwaysApproves(t *testing.T) {
	p := NewSimulatedProvider(1.0, 42)

	for i := 0; i < 100; i++ {
		result, err := p.Submit(context.Background(), &domain.ConversionTransaction{})
		require.NoError(t, err)
		require.True(t, result.Success)
		require.NotEmpty(t, result.PayoutID)
		require.Empty(t, result.Error)
	}
}

func TestSimulatedProvider_AlwaysDeclines(t *testing.T) {
	p := NewSimulatedProvider(0, 42)

	result, err := p.Submit(context.Background(), &domain.ConversionTransaction{})

	// A decline is a business outcome, never a transport error.
	require.NoError(t, err)
	require.False(t, result.Success)
	require.Empty(t, result.PayoutID)
	require.Equal(t, "payout declined by provider", result.Error)
}

func TestSimulatedProvider_ApproximatesConfiguredRate(t *testing.T) {
	p := NewSimulatedProvider(0.8, 7)

	approved := 0
	const n = 1000
	for i := 0; i < n; i++ {
		result, err := p.Submit(context.Background(), &domain.ConversionTransaction{})
		require.NoError(t, err)
		if result.Success {
			approved++
		}
	}

	require.InDelta(t, 0.8, float64(approved)/n, 0.05)
}

func TestSimulatedProvider_InvalidRateFallsBackToDefault(t *testing.T) {
	p := NewSimulatedProvider(1.5, 42)
	require.Equal(t, 0.95, p.successRate)
}
