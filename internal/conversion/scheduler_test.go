package conversion

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestScheduler(interval time.Duration) (*Scheduler, *MockPaymentRepository) {
	payments := new(MockPaymentRepository)
	conversions := new(MockConversionRepository)
	settings := NewSettingsService(new(MockSettingsRepository), new(MockSettingsCache))
	service := newTestService(new(MockPriceClient), new(MockPayoutProvider), conversions)
	return NewScheduler(payments, conversions, settings, service, interval), payments
}

func TestNewScheduler_Constructs(t *testing.T) {
	s, _ := newTestScheduler(10 * time.Second)
	require.NotNil(t, s)
	require.Nil(t, s.sched)
}

func TestScheduler_Shutdown_NoScheduler_ReturnsNil(t *testing.T) {
	s, _ := newTestScheduler(10 * time.Second)
	require.NoError(t, s.Shutdown())
	require.Nil(t, s.sched)
}

func TestScheduler_Start_And_ContextCancel_ShutsDown(t *testing.T) {
	s, payments := newTestScheduler(10 * time.Second)
	payments.On("ListUnconverted", mock.Anything).Return(nil, nil).Maybe()
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, s.Start(ctx))
	require.NotNil(t, s.sched)

	cancel()

	// Wait until s.sched becomes nil (Shutdown sets it to nil)
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.sched == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	require.Nil(t, s.sched, "expected scheduler to be shutdown after ctx cancel")
}

func TestScheduler_Shutdown_AfterStart_Idempotent(t *testing.T) {
	s, payments := newTestScheduler(10 * time.Second)
	payments.On("ListUnconverted", mock.Anything).Return(nil, nil).Maybe()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.Start(ctx))
	require.NotNil(t, s.sched)

	require.NoError(t, s.Shutdown())
	require.Nil(t, s.sched)

	// Second shutdown should be a no-op and return nil
	require.NoError(t, s.Shutdown())
}

func TestNewScheduler_UsesProvidedInterval(t *testing.T) {
	s, _ := newTestScheduler(42 * time.Second)
	require.Equal(t, 42*time.Second, s.interval)
}

func TestNewScheduler_DefaultsIntervalWhenInvalid(t *testing.T) {
	s, _ := newTestScheduler(0)
	require.Equal(t, time.Minute, s.interval)
}
