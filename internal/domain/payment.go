package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is the read-only view of a completed crypto payment that the
// conversion subsystem consumes. The payment lifecycle itself is owned
// elsewhere in the gateway.
type Payment struct {
	ID          string
	MerchantID  string
	Amount      decimal.Decimal
	Currency    CryptoCurrency
	Status      string
	CompletedAt time.Time
}
