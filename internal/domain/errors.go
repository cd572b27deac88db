package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrRateUnavailable     = errors.New("exchange rates unavailable")
	ErrUnsupportedAsset    = errors.New("unsupported crypto asset")
	ErrUnsupportedCurrency = errors.New("unsupported fiat currency")
	ErrSettingsNotFound    = errors.New("conversion settings not found")
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrConversionNotFound  = errors.New("conversion not found")
	ErrUnauthorized        = errors.New("payment does not belong to merchant")
)

// Error codes recorded on failed conversion transactions.
const (
	CodeConversionFailed = "CONVERSION_FAILED"
	CodeExecutionError   = "EXECUTION_ERROR"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every field that failed validation so the caller
// can fix the whole payload in one round trip.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) HasErrors() bool { return len(e.Fields) > 0 }
