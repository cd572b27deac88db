package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"virdispay/internal/adapters"
	"virdispay/internal/conversion"
	"virdispay/internal/domain"
)

type Handler struct {
	settings *conversion.SettingsService
	service  *conversion.Service
	history  *conversion.HistoryService
	rates    *conversion.RateCache
	payments adapters.PaymentRepository
}

func NewConversionHandler(settings *conversion.SettingsService, service *conversion.Service, history *conversion.HistoryService, rates *conversion.RateCache, payments adapters.PaymentRepository) *Handler {
	return &Handler{
		settings: settings,
		service:  service,
		history:  history,
		rates:    rates,
		payments: payments,
	}
}

// Every endpoint answers with this envelope: success plus either data or an
// error message.
type successResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeData(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(successResponse{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, statusCode int, errorMsg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorResponse{Success: false, Error: errorMsg})
}

type ctxKey int

const merchantIDKey ctxKey = iota

const merchantIDHeader = "X-Merchant-ID"

// MerchantScope extracts the authenticated merchant id injected by the
// gateway's auth layer. Requests without it never reach the services.
func MerchantScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		merchantID := r.Header.Get(merchantIDHeader)
		if merchantID == "" {
			writeError(w, http.StatusUnauthorized, "missing merchant identity")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), merchantIDKey, merchantID)))
	})
}

func merchantFromContext(ctx context.Context) string {
	merchantID, _ := ctx.Value(merchantIDKey).(string)
	return merchantID
}

// conversionResponse is the wire shape of a conversion transaction.
type conversionResponse struct {
	ConversionID      string                `json:"conversion_id"`
	MerchantID        string                `json:"merchant_id"`
	OriginalPaymentID string                `json:"original_payment_id"`
	CryptoAmount      string                `json:"crypto_amount"`
	CryptoCurrency    string                `json:"crypto_currency"`
	FiatAmount        float64               `json:"fiat_amount"`
	FiatCurrency      string                `json:"fiat_currency"`
	ExchangeRate      float64               `json:"exchange_rate"`
	Status            string                `json:"status"`
	Method            string                `json:"method"`
	Provider          string                `json:"provider"`
	Fees              domain.FeeBreakdown   `json:"fees"`
	NetAmount         float64               `json:"net_amount"`
	Payout            *domain.PayoutDetails `json:"payout_details,omitempty"`
	Error             *domain.ErrorDetails  `json:"error_details,omitempty"`
	InitiatedAt       time.Time             `json:"initiated_at"`
	ProcessedAt       *time.Time            `json:"processed_at,omitempty"`
	CompletedAt       *time.Time            `json:"completed_at,omitempty"`
	FailedAt          *time.Time            `json:"failed_at,omitempty"`
}

func toConversionResponse(tx *domain.ConversionTransaction) conversionResponse {
	return conversionResponse{
		ConversionID:      tx.ConversionID,
		MerchantID:        tx.MerchantID,
		OriginalPaymentID: tx.OriginalPaymentID,
		CryptoAmount:      tx.CryptoAmount.String(),
		CryptoCurrency:    string(tx.CryptoCurrency),
		FiatAmount:        tx.FiatAmount,
		FiatCurrency:      string(tx.FiatCurrency),
		ExchangeRate:      tx.ExchangeRate,
		Status:            string(tx.Status),
		Method:            string(tx.Method),
		Provider:          string(tx.Provider),
		Fees:              tx.Fees,
		NetAmount:         tx.NetAmount(),
		Payout:            tx.Payout,
		Error:             tx.Error,
		InitiatedAt:       tx.InitiatedAt,
		ProcessedAt:       tx.ProcessedAt,
		CompletedAt:       tx.CompletedAt,
		FailedAt:          tx.FailedAt,
	}
}

type settingsResponse struct {
	MerchantID            string                   `json:"merchant_id"`
	AutoConvertEnabled    bool                     `json:"auto_convert_enabled"`
	ConversionThreshold   float64                  `json:"conversion_threshold"`
	PreferredFiatCurrency string                   `json:"preferred_fiat_currency"`
	Banking               domain.BankingInfo       `json:"banking_info"`
	Limits                domain.ConversionLimits  `json:"limits"`
	SupportedCryptos      []domain.SupportedCrypto `json:"supported_cryptos"`
	IsActive              bool                     `json:"is_active"`
	UpdatedAt             time.Time                `json:"updated_at"`
}

func toSettingsResponse(s *domain.ConversionSettings) settingsResponse {
	return settingsResponse{
		MerchantID:            s.MerchantID,
		AutoConvertEnabled:    s.AutoConvertEnabled,
		ConversionThreshold:   s.ConversionThreshold,
		PreferredFiatCurrency: string(s.PreferredFiatCurrency),
		Banking:               s.Banking,
		Limits:                s.Limits,
		SupportedCryptos:      s.SupportedCryptos,
		IsActive:              s.IsActive,
		UpdatedAt:             s.UpdatedAt,
	}
}
