package handler

import (
	"net/http"

	"virdispay/internal/conversion"

	"github.com/sirupsen/logrus"
)

// GetStats godoc
// @Summary Conversion statistics
// @Description Aggregate conversion stats over a trailing period
// @Tags Conversions
// @Produce json
// @Param period query string false "7d, 30d or 90d (default 30d)"
// @Success 200 {object} successResponse
// @Failure 400 {object} errorResponse
// @Router /conversion/stats [get]
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	merchantID := merchantFromContext(r.Context())

	period := r.URL.Query().Get("period")
	if period == "" {
		period = "30d"
	}
	if _, ok := conversion.StatsPeriods[period]; !ok {
		writeError(w, http.StatusBadRequest, "invalid period, expected one of 7d, 30d, 90d")
		return
	}

	stats, err := h.history.Stats(r.Context(), merchantID, period)
	if err != nil {
		msg := "couldn't aggregate conversion stats this time"
		logrus.WithError(err).WithFields(logrus.Fields{"handler": "GetStats", "merchant_id": merchantID, "period": period}).Error(msg)
		writeError(w, http.StatusInternalServerError, msg)
		return
	}

	writeData(w, http.StatusOK, stats)
}
