package domain

type CryptoCurrency string

const (
	BTC  CryptoCurrency = "BTC"
	ETH  CryptoCurrency = "ETH"
	USDC CryptoCurrency = "USDC"
	USDT CryptoCurrency = "USDT"
	DAI  CryptoCurrency = "DAI"
)

type FiatCurrency string

const (
	USD FiatCurrency = "USD"
	EUR FiatCurrency = "EUR"
	GBP FiatCurrency = "GBP"
	CAD FiatCurrency = "CAD"
	AUD FiatCurrency = "AUD"
)

// SupportedCryptoCurrencies lists every asset the gateway accepts, in the
// order they are requested from the pricing provider.
var SupportedCryptoCurrencies = []CryptoCurrency{BTC, ETH, USDC, USDT, DAI}

var SupportedFiatCurrencies = []FiatCurrency{USD, EUR, GBP, CAD, AUD}

func IsSupportedCrypto(c CryptoCurrency) bool {
	for _, s := range SupportedCryptoCurrencies {
		if s == c {
			return true
		}
	}
	return false
}

func IsSupportedFiat(f FiatCurrency) bool {
	for _, s := range SupportedFiatCurrencies {
		if s == f {
			return true
		}
	}
	return false
}

// IsStablecoin reports whether the asset is pegged to a fiat currency.
func IsStablecoin(c CryptoCurrency) bool {
	return c == USDC || c == USDT || c == DAI
}
