package handler

import (
	"errors"
	"net/http"
	"time"

	"virdispay/internal/domain"

	"github.com/sirupsen/logrus"
)

type ratesResponse struct {
	Rates     domain.RateTable `json:"rates"`
	FetchedAt time.Time        `json:"fetched_at"`
}

// GetRates godoc
// @Summary Current exchange rates
// @Description Spot rates for every supported asset/fiat pair
// @Tags Rates
// @Produce json
// @Success 200 {object} successResponse
// @Failure 503 {object} errorResponse
// @Router /conversion/rates [get]
func (h *Handler) GetRates(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.rates.GetRates(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrRateUnavailable) {
			writeError(w, http.StatusServiceUnavailable, "exchange rates unavailable, try again later")
			return
		}
		msg := "couldn't load exchange rates this time"
		logrus.WithError(err).WithField("handler", "GetRates").Error(msg)
		writeError(w, http.StatusInternalServerError, msg)
		return
	}

	writeData(w, http.StatusOK, ratesResponse{Rates: snapshot.Rates, FetchedAt: snapshot.FetchedAt})
}
