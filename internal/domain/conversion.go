package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ConversionStatus string

const (
	StatusPending    ConversionStatus = "pending"
	StatusProcessing ConversionStatus = "processing"
	StatusCompleted  ConversionStatus = "completed"
	StatusFailed     ConversionStatus = "failed"
	StatusCancelled  ConversionStatus = "cancelled"
)

// Terminal reports whether the status permits no further transitions.
func (s ConversionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

type ConversionMethod string

const (
	MethodAutomatic ConversionMethod = "automatic"
	MethodManual    ConversionMethod = "manual"
	MethodScheduled ConversionMethod = "scheduled"
)

func IsValidMethod(m ConversionMethod) bool {
	return m == MethodAutomatic || m == MethodManual || m == MethodScheduled
}

type ConversionProvider string

const (
	ProviderCoinbase ConversionProvider = "coinbase"
	ProviderKraken   ConversionProvider = "kraken"
	ProviderBinance  ConversionProvider = "binance"
	ProviderInternal ConversionProvider = "internal"
)

type FeeBreakdown struct {
	Conversion float64 `json:"conversion"`
	Network    float64 `json:"network"`
	Banking    float64 `json:"banking"`
	Total      float64 `json:"total"`
}

type PayoutDetails struct {
	PayoutID         string     `json:"payout_id,omitempty"`
	PayoutStatus     string     `json:"payout_status"`
	EstimatedArrival *time.Time `json:"estimated_arrival,omitempty"`
	ActualArrival    *time.Time `json:"actual_arrival,omitempty"`
	TrackingNumber   string     `json:"tracking_number,omitempty"`
}

type ErrorDetails struct {
	Code          string `json:"code"`
	Message       string `json:"message"`
	ProviderError string `json:"provider_error,omitempty"`
}

// PayoutResult is what a payout rail reports back for a submission. A declined
// payout has Success false and Error set; it is not a transport failure.
type PayoutResult struct {
	Success  bool
	PayoutID string
	Error    string
}

// ConversionTransaction is a single crypto-to-fiat conversion attempt. Records
// are append-mostly: only the orchestrator mutates them during execution, and
// they are never deleted.
type ConversionTransaction struct {
	ConversionID      string
	MerchantID        string
	OriginalPaymentID string

	CryptoAmount   decimal.Decimal
	CryptoCurrency CryptoCurrency
	FiatAmount     float64
	FiatCurrency   FiatCurrency
	// ExchangeRate is frozen at conversion time, never re-derived.
	ExchangeRate float64

	Status   ConversionStatus
	Method   ConversionMethod
	Provider ConversionProvider

	Fees FeeBreakdown
	// BankingSnapshot is the merchant's banking info copied at conversion time,
	// immutable once set.
	BankingSnapshot BankingInfo

	Payout *PayoutDetails
	Error  *ErrorDetails

	InitiatedAt time.Time
	ProcessedAt *time.Time
	CompletedAt *time.Time
	FailedAt    *time.Time
}

// NetAmount is the fiat payout after fees. Computed on read, never persisted.
func (t *ConversionTransaction) NetAmount() float64 {
	return round2(t.FiatAmount - t.Fees.Total)
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
