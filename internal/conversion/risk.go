package conversion

import "virdispay/internal/domain"

// AssessRisk scores a conversion 0-100 for compliance logging. Stablecoins
// score lower than volatile assets; larger amounts push the score up. The
// score never blocks a conversion at this layer.
func AssessRisk(fiatAmount float64, currency domain.CryptoCurrency) int {
	score := 10
	if !domain.IsStablecoin(currency) {
		score += 20
	}

	switch {
	case fiatAmount >= 50000:
		score += 50
	case fiatAmount >= 10000:
		score += 30
	case fiatAmount >= 1000:
		score += 10
	}

	if score > 100 {
		score = 100
	}
	return score
}
