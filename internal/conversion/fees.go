package conversion

import (
	"virdispay/internal/domain"

	"github.com/shopspring/decimal"
)

// Fee schedule. The network fee is a flat charge regardless of the target
// currency; the banking fee depends on whether the payout stays domestic
// (USD) or goes through international rails.
var (
	conversionFeeRate = decimal.NewFromFloat(0.005) // 0.5%
	networkFee        = decimal.NewFromFloat(2.50)
	bankingFeeUSD     = decimal.NewFromFloat(0.25)
	bankingFeeIntl    = decimal.NewFromFloat(1.50)
)

// ComputeFees returns the full fee breakdown for converting fiatAmount into
// the given currency. Pure and deterministic; every field is rounded to 2
// decimals.
func ComputeFees(fiatAmount float64, _ domain.CryptoCurrency, fiatCurrency domain.FiatCurrency) domain.FeeBreakdown {
	amount := decimal.NewFromFloat(fiatAmount)

	conv := amount.Mul(conversionFeeRate).Round(2)
	banking := bankingFeeIntl
	if fiatCurrency == domain.USD {
		banking = bankingFeeUSD
	}
	total := conv.Add(networkFee).Add(banking).Round(2)

	return domain.FeeBreakdown{
		Conversion: conv.InexactFloat64(),
		Network:    networkFee.InexactFloat64(),
		Banking:    banking.InexactFloat64(),
		Total:      total.InexactFloat64(),
	}
}
