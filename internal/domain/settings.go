package domain

import "time"

type AccountType string

const (
	AccountTypeChecking AccountType = "checking"
	AccountTypeSavings  AccountType = "savings"
	AccountTypeBusiness AccountType = "business"
)

// BankingInfo is the payout destination. All core fields are required once
// auto-conversion is enabled; SwiftCode and IBAN are conditionally required
// depending on the preferred fiat currency.
type BankingInfo struct {
	AccountType       AccountType `json:"account_type"`
	BankName          string      `json:"bank_name"`
	AccountNumber     string      `json:"account_number"`
	RoutingNumber     string      `json:"routing_number"`
	AccountHolderName string      `json:"account_holder_name"`
	SwiftCode         string      `json:"swift_code,omitempty"`
	IBAN              string      `json:"iban,omitempty"`
}

type ConversionLimits struct {
	SlippageTolerancePercent float64 `json:"slippage_tolerance_percent"`
	MinConversionAmount      float64 `json:"min_conversion_amount"`
	MaxConversionAmount      float64 `json:"max_conversion_amount"`
	ConversionDelayHours     int     `json:"conversion_delay_hours"`
}

func DefaultLimits() ConversionLimits {
	return ConversionLimits{
		SlippageTolerancePercent: 1.0,
		MinConversionAmount:      10,
		MaxConversionAmount:      50000,
		ConversionDelayHours:     0,
	}
}

type SupportedCrypto struct {
	Symbol  CryptoCurrency `json:"symbol"`
	Enabled bool           `json:"enabled"`
}

// ConversionSettings is the merchant-scoped auto-conversion configuration.
// Records are soft-deleted by flipping IsActive, never removed.
type ConversionSettings struct {
	MerchantID            string
	AutoConvertEnabled    bool
	ConversionThreshold   float64
	PreferredFiatCurrency FiatCurrency
	Banking               BankingInfo
	Limits                ConversionLimits
	SupportedCryptos      []SupportedCrypto
	IsActive              bool
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// CryptoEnabled reports whether the symbol is present and enabled in the
// merchant's allowlist.
func (s *ConversionSettings) CryptoEnabled(symbol CryptoCurrency) bool {
	for _, c := range s.SupportedCryptos {
		if c.Symbol == symbol {
			return c.Enabled
		}
	}
	return false
}
