package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"virdispay/internal/domain"

	"github.com/sirupsen/logrus"
)

type toggleAutoConvertRequest struct {
	Enabled bool `json:"enabled"`
}

func (h *Handler) ToggleAutoConvert(w http.ResponseWriter, r *http.Request) {
	merchantID := merchantFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 256)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req toggleAutoConvertRequest
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.settings.ToggleAutoConvert(r.Context(), merchantID, req.Enabled)
	if err != nil {
		if errors.Is(err, domain.ErrSettingsNotFound) {
			writeError(w, http.StatusNotFound, "conversion settings not found")
			return
		}
		msg := "couldn't toggle auto-convert this time"
		logrus.WithError(err).WithFields(logrus.Fields{"handler": "ToggleAutoConvert", "merchant_id": merchantID}).Error(msg)
		writeError(w, http.StatusInternalServerError, msg)
		return
	}

	writeData(w, http.StatusOK, toSettingsResponse(updated))
}
