package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"virdispay/internal/domain"

	"github.com/sirupsen/logrus"
)

type saveSettingsRequest struct {
	AutoConvertEnabled    bool                     `json:"auto_convert_enabled"`
	ConversionThreshold   float64                  `json:"conversion_threshold"`
	PreferredFiatCurrency string                   `json:"preferred_fiat_currency"`
	Banking               domain.BankingInfo       `json:"banking_info"`
	Limits                *domain.ConversionLimits `json:"limits"`
	SupportedCryptos      []domain.SupportedCrypto `json:"supported_cryptos"`
}

// SaveSettings godoc
// @Summary Save conversion settings
// @Description Create or update the merchant's conversion settings
// @Tags Settings
// @Accept json
// @Produce json
// @Success 200 {object} successResponse
// @Failure 400 {object} errorResponse
// @Router /conversion/settings [post]
func (h *Handler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	merchantID := merchantFromContext(r.Context())

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req saveSettingsRequest
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	limits := domain.DefaultLimits()
	if req.Limits != nil {
		limits = *req.Limits
	}

	settings := &domain.ConversionSettings{
		MerchantID:            merchantID,
		AutoConvertEnabled:    req.AutoConvertEnabled,
		ConversionThreshold:   req.ConversionThreshold,
		PreferredFiatCurrency: domain.FiatCurrency(req.PreferredFiatCurrency),
		Banking:               req.Banking,
		Limits:                limits,
		SupportedCryptos:      req.SupportedCryptos,
	}

	saved, err := h.settings.Save(r.Context(), settings)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Error())
			return
		}
		msg := "couldn't save conversion settings this time"
		logrus.WithError(err).WithFields(logrus.Fields{"handler": "SaveSettings", "merchant_id": merchantID}).Error(msg)
		writeError(w, http.StatusInternalServerError, msg)
		return
	}

	writeData(w, http.StatusOK, toSettingsResponse(saved))
}
