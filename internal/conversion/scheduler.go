package conversion

import (
	"context"
	"time"

	"virdispay/internal/adapters"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Scheduler periodically sweeps completed payments whose merchant configured
// a conversion delay and initiates them with the "scheduled" method.
type Scheduler struct {
	payments    adapters.PaymentRepository
	conversions adapters.ConversionRepository
	settings    *SettingsService
	service     *Service
	interval    time.Duration
	// -----
	sched gocron.Scheduler
}

func NewScheduler(payments adapters.PaymentRepository, conversions adapters.ConversionRepository, settings *SettingsService, service *Service, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		payments:    payments,
		conversions: conversions,
		settings:    settings,
		service:     service,
		interval:    interval,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	s.sched = scheduler

	job := func(jobCtx context.Context) {
		execID := uuid.NewString()
		if sweepErr := SweepScheduledConversions(jobCtx, execID, s.payments, s.conversions, s.settings, s.service); sweepErr != nil {
			logrus.Errorf("Scheduled conversion sweep %s failed: %v", execID, sweepErr)
		}
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(job),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}

	scheduler.Start()

	// Stop scheduler when the provided context is canceled.
	go func() {
		<-ctx.Done()
		if sdErr := s.Shutdown(); sdErr != nil {
			logrus.Errorf("Scheduler shutdown error: %v", sdErr)
		}
	}()
	return nil
}

func (s *Scheduler) Shutdown() error {
	if s.sched == nil {
		return nil
	}
	err := s.sched.Shutdown()
	s.sched = nil
	return err
}
