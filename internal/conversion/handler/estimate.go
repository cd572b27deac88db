package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"virdispay/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type estimateRequest struct {
	Amount         string `json:"amount"`
	CryptoCurrency string `json:"crypto_currency"`
	FiatCurrency   string `json:"fiat_currency"`
}

// EstimateConversion godoc
// @Summary Preview a conversion
// @Description Price a crypto amount in fiat with the full fee breakdown; nothing is persisted
// @Tags Conversions
// @Accept json
// @Produce json
// @Success 200 {object} successResponse
// @Failure 400 {object} errorResponse
// @Failure 503 {object} errorResponse
// @Router /conversion/estimate [post]
func (h *Handler) EstimateConversion(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 512)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req estimateRequest
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.IsNegative() {
		writeError(w, http.StatusBadRequest, "invalid amount")
		return
	}

	crypto := domain.CryptoCurrency(req.CryptoCurrency)
	fiat := domain.FiatCurrency(req.FiatCurrency)
	if !domain.IsSupportedCrypto(crypto) {
		writeError(w, http.StatusBadRequest, "unsupported crypto asset")
		return
	}
	if !domain.IsSupportedFiat(fiat) {
		writeError(w, http.StatusBadRequest, "unsupported fiat currency")
		return
	}

	estimate, err := h.service.Estimate(r.Context(), amount, crypto, fiat)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRateUnavailable):
			writeError(w, http.StatusServiceUnavailable, "exchange rates unavailable, try again later")
		case errors.Is(err, domain.ErrUnsupportedAsset), errors.Is(err, domain.ErrUnsupportedCurrency):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			msg := "couldn't estimate conversion this time"
			logrus.WithError(err).WithField("handler", "EstimateConversion").Error(msg)
			writeError(w, http.StatusInternalServerError, msg)
		}
		return
	}

	writeData(w, http.StatusOK, estimate)
}
