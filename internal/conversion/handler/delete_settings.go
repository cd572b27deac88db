package handler

import (
	"errors"
	"net/http"

	"virdispay/internal/domain"

	"github.com/sirupsen/logrus"
)

// DeleteSettings soft-deletes the merchant's settings. In-flight conversions
// finish; future conversions stop.
func (h *Handler) DeleteSettings(w http.ResponseWriter, r *http.Request) {
	merchantID := merchantFromContext(r.Context())

	if err := h.settings.Deactivate(r.Context(), merchantID); err != nil {
		if errors.Is(err, domain.ErrSettingsNotFound) {
			writeError(w, http.StatusNotFound, "conversion settings not found")
			return
		}
		msg := "couldn't delete conversion settings this time"
		logrus.WithError(err).WithFields(logrus.Fields{"handler": "DeleteSettings", "merchant_id": merchantID}).Error(msg)
		writeError(w, http.StatusInternalServerError, msg)
		return
	}

	writeData(w, http.StatusOK, map[string]string{"message": "conversion settings deactivated"})
}
