package conversion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"virdispay/internal/adapters"
	"virdispay/internal/domain"

	"github.com/sirupsen/logrus"
)

// SweepScheduledConversions finds completed payments with no conversion yet
// and initiates the ones whose merchant delay has elapsed and whose policy
// criteria hold. Per-payment failures are logged and skipped so one bad
// payment cannot stall the sweep.
func SweepScheduledConversions(ctx context.Context, execID string, payments adapters.PaymentRepository, conversions adapters.ConversionRepository, settings *SettingsService, service *Service) error {
	pending, err := payments.ListUnconverted(ctx)
	if err != nil {
		return fmt.Errorf("failed to list unconverted payments: %w", err)
	}
	if len(pending) == 0 {
		logrus.Debugf("No payments to sweep this time; execID: %s", execID)
		return nil
	}

	logrus.Infof("%d unconverted payments found, start sweeping; execID: %s", len(pending), execID)

	now := time.Now()
	swept := 0
	for i := range pending {
		payment := &pending[i]
		if sweepOne(ctx, now, payment, conversions, settings, service) {
			swept++
		}
	}

	logrus.Infof("%d scheduled conversions initiated; execID: %s", swept, execID)
	return nil
}

func sweepOne(ctx context.Context, now time.Time, payment *domain.Payment, conversions adapters.ConversionRepository, settings *SettingsService, service *Service) bool {
	merchantSettings, err := settings.Get(ctx, payment.MerchantID)
	if err != nil {
		if !errors.Is(err, domain.ErrSettingsNotFound) {
			logrus.WithError(err).WithField("payment_id", payment.ID).Warn("Skipping payment, settings lookup failed")
		}
		return false
	}

	if !ShouldAutoConvert(merchantSettings, payment.Amount.InexactFloat64(), payment.Currency) {
		return false
	}

	// Respect the merchant's delay window; a zero delay is handled by the
	// automatic path at payment time, not by the sweep.
	delay := time.Duration(merchantSettings.Limits.ConversionDelayHours) * time.Hour
	if delay == 0 || payment.CompletedAt.Add(delay).After(now) {
		return false
	}

	// Cheap guard against the sweep re-initiating a payment it already
	// converted on a previous run.
	exists, err := conversions.ExistsForPayment(ctx, payment.ID)
	if err != nil {
		logrus.WithError(err).WithField("payment_id", payment.ID).Warn("Skipping payment, conversion lookup failed")
		return false
	}
	if exists {
		return false
	}

	if _, err = service.InitiateConversion(ctx, payment.MerchantID, payment, merchantSettings, domain.MethodScheduled); err != nil {
		logrus.WithError(err).WithField("payment_id", payment.ID).Warn("Scheduled conversion failed, payment will be retried next sweep")
		return false
	}
	return true
}
