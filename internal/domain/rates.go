package domain

import "time"

// RateTable maps crypto asset -> fiat code -> units of fiat per one unit of
// the asset.
type RateTable map[CryptoCurrency]map[FiatCurrency]float64

// RateSnapshot is an immutable point-in-time rate table. Consumers receive a
// shared reference and must not mutate it.
type RateSnapshot struct {
	Rates     RateTable
	FetchedAt time.Time
}

// Age returns how old the snapshot is relative to now.
func (s *RateSnapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.FetchedAt)
}

// ConversionQuote is the result of pricing a crypto amount in fiat.
type ConversionQuote struct {
	FiatAmount   float64
	ExchangeRate float64
}
