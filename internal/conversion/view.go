package conversion

import "virdispay/internal/domain"

// Estimate is a pure conversion preview; nothing about it is persisted.
type Estimate struct {
	FiatAmount   float64             `json:"fiat_amount"`
	ExchangeRate float64             `json:"exchange_rate"`
	Fees         domain.FeeBreakdown `json:"fees"`
	NetAmount    float64             `json:"net_amount"`
}
