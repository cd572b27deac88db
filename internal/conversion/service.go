package conversion

import (
	"context"
	"fmt"
	"time"

	"virdispay/internal/adapters"
	"virdispay/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const payoutArrivalDelay = 48 * time.Hour

// Service drives the conversion lifecycle: it creates the persisted
// transaction record, executes the payout and transitions the status. Only
// this service mutates conversion records.
type Service struct {
	rates       *RateCache
	payout      adapters.PayoutProvider
	conversions adapters.ConversionRepository
	provider    domain.ConversionProvider
	now         func() time.Time
}

func NewService(rates *RateCache, payout adapters.PayoutProvider, conversions adapters.ConversionRepository, provider domain.ConversionProvider) *Service {
	return &Service{
		rates:       rates,
		payout:      payout,
		conversions: conversions,
		provider:    provider,
		now:         time.Now,
	}
}

// NewConversionID builds a globally unique, time-sortable conversion id.
func NewConversionID() string {
	return fmt.Sprintf("conv_%d_%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

// Estimate prices a conversion without persisting anything.
func (s *Service) Estimate(ctx context.Context, amount decimal.Decimal, from domain.CryptoCurrency, to domain.FiatCurrency) (*Estimate, error) {
	quote, err := s.rates.Convert(ctx, amount, from, to)
	if err != nil {
		return nil, err
	}
	fees := ComputeFees(quote.FiatAmount, from, to)
	net := decimal.NewFromFloat(quote.FiatAmount).Sub(decimal.NewFromFloat(fees.Total)).Round(2)

	return &Estimate{
		FiatAmount:   quote.FiatAmount,
		ExchangeRate: quote.ExchangeRate,
		Fees:         fees,
		NetAmount:    net.InexactFloat64(),
	}, nil
}

// InitiateConversion creates a pending conversion for the payment and
// immediately executes it. Rate or fee failures abort before anything is
// persisted. A declined payout resolves the transaction as failed without an
// error return; only infrastructure faults propagate.
func (s *Service) InitiateConversion(ctx context.Context, callerMerchantID string, payment *domain.Payment, settings *domain.ConversionSettings, method domain.ConversionMethod) (*domain.ConversionTransaction, error) {
	if !domain.IsValidMethod(method) {
		return nil, fmt.Errorf("invalid conversion method %q", method)
	}
	if method == domain.MethodManual && payment.MerchantID != callerMerchantID {
		return nil, domain.ErrUnauthorized
	}

	fiat := settings.PreferredFiatCurrency
	quote, err := s.rates.Convert(ctx, payment.Amount, payment.Currency, fiat)
	if err != nil {
		return nil, err
	}
	fees := ComputeFees(quote.FiatAmount, payment.Currency, fiat)

	tx := &domain.ConversionTransaction{
		ConversionID:      NewConversionID(),
		MerchantID:        payment.MerchantID,
		OriginalPaymentID: payment.ID,
		CryptoAmount:      payment.Amount,
		CryptoCurrency:    payment.Currency,
		FiatAmount:        quote.FiatAmount,
		FiatCurrency:      fiat,
		ExchangeRate:      quote.ExchangeRate,
		Status:            domain.StatusPending,
		Method:            method,
		Provider:          s.provider,
		Fees:              fees,
		BankingSnapshot:   settings.Banking,
		InitiatedAt:       s.now(),
	}

	logrus.WithFields(logrus.Fields{
		"conversion_id": tx.ConversionID,
		"merchant_id":   tx.MerchantID,
		"payment_id":    tx.OriginalPaymentID,
		"fiat_amount":   tx.FiatAmount,
		"method":        method,
		"risk_score":    AssessRisk(quote.FiatAmount, payment.Currency),
	}).Info("Initiating conversion")

	if err = s.conversions.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to create conversion record: %w", err)
	}

	return s.ExecuteConversion(ctx, tx)
}

// ExecuteConversion moves a pending transaction through processing to a
// terminal state. The payout submission is the only suspension point; partial
// state is persisted before it so a crash leaves an inspectable record.
//
// Not guarded against re-execution; single-caller discipline is assumed.
func (s *Service) ExecuteConversion(ctx context.Context, tx *domain.ConversionTransaction) (*domain.ConversionTransaction, error) {
	processedAt := s.now()
	tx.Status = domain.StatusProcessing
	tx.ProcessedAt = &processedAt
	if err := s.conversions.Update(ctx, tx); err != nil {
		s.markFailed(ctx, tx, domain.CodeExecutionError, err.Error(), "")
		return tx, fmt.Errorf("failed to persist processing state: %w", err)
	}

	result, err := s.payout.Submit(ctx, tx)
	if err != nil {
		// Infrastructure fault: record it and surface it to the caller.
		s.markFailed(ctx, tx, domain.CodeExecutionError, err.Error(), "")
		logrus.WithError(err).WithField("conversion_id", tx.ConversionID).Error("Conversion execution failed")
		return tx, fmt.Errorf("conversion execution failed: %w", err)
	}

	if !result.Success {
		// A declined payout is a normal terminal outcome, not a system fault.
		s.markFailed(ctx, tx, domain.CodeConversionFailed, "Conversion failed", result.Error)
		logrus.WithFields(logrus.Fields{
			"conversion_id":  tx.ConversionID,
			"provider_error": result.Error,
		}).Warn("Payout declined")
		return tx, nil
	}

	payoutID := result.PayoutID
	if payoutID == "" {
		payoutID = "po_" + uuid.NewString()
	}
	completedAt := s.now()
	arrival := completedAt.Add(payoutArrivalDelay)
	tx.Status = domain.StatusCompleted
	tx.CompletedAt = &completedAt
	tx.Payout = &domain.PayoutDetails{
		PayoutID:         payoutID,
		PayoutStatus:     "processing",
		EstimatedArrival: &arrival,
	}
	if err = s.conversions.Update(ctx, tx); err != nil {
		return tx, fmt.Errorf("failed to persist completed conversion %s: %w", tx.ConversionID, err)
	}

	logrus.WithFields(logrus.Fields{
		"conversion_id": tx.ConversionID,
		"payout_id":     payoutID,
		"net_amount":    tx.NetAmount(),
	}).Info("Conversion completed")
	return tx, nil
}

// HandlePaymentCompleted is the automatic trigger: it applies the conversion
// policy and initiates when the payment qualifies. Returns nil when the
// payment is left unconverted.
func (s *Service) HandlePaymentCompleted(ctx context.Context, payment *domain.Payment, settings *domain.ConversionSettings) (*domain.ConversionTransaction, error) {
	if !ShouldAutoConvert(settings, payment.Amount.InexactFloat64(), payment.Currency) {
		return nil, nil
	}
	return s.InitiateConversion(ctx, payment.MerchantID, payment, settings, domain.MethodAutomatic)
}

func (s *Service) markFailed(ctx context.Context, tx *domain.ConversionTransaction, code, message, providerError string) {
	failedAt := s.now()
	tx.Status = domain.StatusFailed
	tx.FailedAt = &failedAt
	tx.Error = &domain.ErrorDetails{Code: code, Message: message, ProviderError: providerError}
	if err := s.conversions.Update(ctx, tx); err != nil {
		logrus.WithError(err).WithField("conversion_id", tx.ConversionID).Error("Failed to persist failed conversion state")
	}
}
