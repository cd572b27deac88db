package conversion

import (
	"fmt"

	"virdispay/internal/domain"
)

// ValidateSettings checks a settings payload before persistence, collecting
// every violated field. Banking details are only mandatory once
// auto-conversion is switched on; SwiftCode and IBAN are required depending
// on the preferred fiat currency. Returns nil when the payload is valid.
func ValidateSettings(s *domain.ConversionSettings) *domain.ValidationError {
	verr := &domain.ValidationError{}

	if s.MerchantID == "" {
		verr.Add("merchant_id", "is required")
	}
	if !domain.IsSupportedFiat(s.PreferredFiatCurrency) {
		verr.Add("preferred_fiat_currency", fmt.Sprintf("%q is not a supported fiat currency", s.PreferredFiatCurrency))
	}
	if s.ConversionThreshold < 0 {
		verr.Add("conversion_threshold", "must not be negative")
	}

	validateLimits(verr, s.Limits)
	validateSupportedCryptos(verr, s.SupportedCryptos)

	if s.AutoConvertEnabled {
		validateBanking(verr, s.Banking, s.PreferredFiatCurrency)
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

func validateLimits(verr *domain.ValidationError, l domain.ConversionLimits) {
	if l.SlippageTolerancePercent < 0 || l.SlippageTolerancePercent > 5 {
		verr.Add("limits.slippage_tolerance_percent", "must be between 0 and 5")
	}
	if l.MinConversionAmount < 1 {
		verr.Add("limits.min_conversion_amount", "must be at least 1")
	}
	if l.MaxConversionAmount < 100 {
		verr.Add("limits.max_conversion_amount", "must be at least 100")
	}
	if l.MaxConversionAmount < l.MinConversionAmount {
		verr.Add("limits.max_conversion_amount", "must not be below min_conversion_amount")
	}
	if l.ConversionDelayHours < 0 || l.ConversionDelayHours > 24 {
		verr.Add("limits.conversion_delay_hours", "must be between 0 and 24")
	}
}

func validateSupportedCryptos(verr *domain.ValidationError, cryptos []domain.SupportedCrypto) {
	seen := make(map[domain.CryptoCurrency]struct{}, len(cryptos))
	for _, c := range cryptos {
		if !domain.IsSupportedCrypto(c.Symbol) {
			verr.Add("supported_cryptos", fmt.Sprintf("%q is not a supported crypto asset", c.Symbol))
			continue
		}
		if _, dup := seen[c.Symbol]; dup {
			verr.Add("supported_cryptos", fmt.Sprintf("duplicate symbol %q", c.Symbol))
		}
		seen[c.Symbol] = struct{}{}
	}
}

func validateBanking(verr *domain.ValidationError, b domain.BankingInfo, fiat domain.FiatCurrency) {
	if b.AccountType == "" {
		verr.Add("banking_info.account_type", "is required when auto-convert is enabled")
	} else if b.AccountType != domain.AccountTypeChecking && b.AccountType != domain.AccountTypeSavings && b.AccountType != domain.AccountTypeBusiness {
		verr.Add("banking_info.account_type", fmt.Sprintf("%q is not a valid account type", b.AccountType))
	}
	if b.BankName == "" {
		verr.Add("banking_info.bank_name", "is required when auto-convert is enabled")
	}
	if b.AccountNumber == "" {
		verr.Add("banking_info.account_number", "is required when auto-convert is enabled")
	}
	if b.RoutingNumber == "" {
		verr.Add("banking_info.routing_number", "is required when auto-convert is enabled")
	}
	if b.AccountHolderName == "" {
		verr.Add("banking_info.account_holder_name", "is required when auto-convert is enabled")
	}
	if fiat != domain.USD && b.SwiftCode == "" {
		verr.Add("banking_info.swift_code", "is required for non-USD payouts")
	}
	if fiat == domain.EUR && b.IBAN == "" {
		verr.Add("banking_info.iban", "is required for EUR payouts")
	}
}
