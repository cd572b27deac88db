package handler

import (
	"errors"
	"net/http"

	"virdispay/internal/domain"

	"github.com/sirupsen/logrus"
)

// GetSettings godoc
// @Summary Get conversion settings
// @Description Retrieve the authenticated merchant's conversion settings
// @Tags Settings
// @Produce json
// @Success 200 {object} successResponse
// @Failure 404 {object} errorResponse
// @Router /conversion/settings [get]
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	merchantID := merchantFromContext(r.Context())

	settings, err := h.settings.Get(r.Context(), merchantID)
	if err != nil {
		if errors.Is(err, domain.ErrSettingsNotFound) {
			writeError(w, http.StatusNotFound, "conversion settings not found")
			return
		}
		msg := "couldn't load conversion settings this time"
		logrus.WithError(err).WithFields(logrus.Fields{"handler": "GetSettings", "merchant_id": merchantID}).Error(msg)
		writeError(w, http.StatusInternalServerError, msg)
		return
	}

	writeData(w, http.StatusOK, toSettingsResponse(settings))
}
