package handler

import (
	"errors"
	"net/http"

	"virdispay/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// ConvertPayment godoc
// @Summary Manually convert a payment
// @Description Trigger a crypto-to-fiat conversion for a completed payment
// @Tags Conversions
// @Produce json
// @Param paymentId path string true "Payment ID"
// @Success 200 {object} successResponse
// @Failure 400 {object} errorResponse
// @Failure 403 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /conversion/convert/{paymentId} [post]
func (h *Handler) ConvertPayment(w http.ResponseWriter, r *http.Request) {
	merchantID := merchantFromContext(r.Context())
	paymentID := chi.URLParam(r, "paymentId")

	payment, err := h.payments.GetByID(r.Context(), paymentID)
	if err != nil {
		if errors.Is(err, domain.ErrPaymentNotFound) {
			writeError(w, http.StatusNotFound, "payment not found")
			return
		}
		msg := "couldn't load payment this time"
		logrus.WithError(err).WithFields(logrus.Fields{"handler": "ConvertPayment", "payment_id": paymentID}).Error(msg)
		writeError(w, http.StatusInternalServerError, msg)
		return
	}

	settings, err := h.settings.Get(r.Context(), merchantID)
	if err != nil {
		if errors.Is(err, domain.ErrSettingsNotFound) {
			writeError(w, http.StatusBadRequest, "configure conversion settings before converting")
			return
		}
		msg := "couldn't load conversion settings this time"
		logrus.WithError(err).WithFields(logrus.Fields{"handler": "ConvertPayment", "merchant_id": merchantID}).Error(msg)
		writeError(w, http.StatusInternalServerError, msg)
		return
	}

	tx, err := h.service.InitiateConversion(r.Context(), merchantID, payment, settings, domain.MethodManual)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnauthorized):
			writeError(w, http.StatusForbidden, "payment does not belong to merchant")
		case errors.Is(err, domain.ErrRateUnavailable):
			writeError(w, http.StatusServiceUnavailable, "exchange rates unavailable, try again later")
		case errors.Is(err, domain.ErrUnsupportedAsset), errors.Is(err, domain.ErrUnsupportedCurrency):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			// The conversion record (if any) is already resolved as failed;
			// the caller gets the infrastructure fault.
			msg := "conversion execution failed"
			logrus.WithError(err).WithFields(logrus.Fields{"handler": "ConvertPayment", "payment_id": paymentID}).Error(msg)
			writeError(w, http.StatusInternalServerError, msg)
		}
		return
	}

	writeData(w, http.StatusOK, toConversionResponse(tx))
}
