package conversion

import "virdispay/internal/domain"

// ShouldAutoConvert decides whether a completed payment qualifies for
// automatic conversion under the merchant's settings. Pure predicate, no side
// effects.
func ShouldAutoConvert(settings *domain.ConversionSettings, paymentAmount float64, paymentCurrency domain.CryptoCurrency) bool {
	if settings == nil || !settings.IsActive || !settings.AutoConvertEnabled {
		return false
	}
	if !settings.CryptoEnabled(paymentCurrency) {
		return false
	}
	if paymentAmount < settings.ConversionThreshold {
		return false
	}
	if paymentAmount < settings.Limits.MinConversionAmount || paymentAmount > settings.Limits.MaxConversionAmount {
		return false
	}
	return true
}
