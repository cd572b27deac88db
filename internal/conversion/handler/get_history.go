package handler

import (
	"net/http"
	"strconv"
	"time"

	"virdispay/internal/domain"

	"github.com/sirupsen/logrus"
)

type historyResponse struct {
	Items      []conversionResponse `json:"items"`
	Pagination domain.Pagination    `json:"pagination"`
}

// GetHistory godoc
// @Summary Conversion history
// @Description Paginated conversion history, newest first
// @Tags Conversions
// @Produce json
// @Param page query int false "Page number (default 1)"
// @Param limit query int false "Page size (default 20)"
// @Param status query string false "Filter by status"
// @Param startDate query string false "RFC3339 lower bound on initiation time"
// @Param endDate query string false "RFC3339 upper bound on initiation time"
// @Success 200 {object} successResponse
// @Failure 400 {object} errorResponse
// @Router /conversion/history [get]
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	merchantID := merchantFromContext(r.Context())

	filter, ok := parseHistoryFilter(w, r)
	if !ok {
		return
	}

	page, err := h.history.List(r.Context(), merchantID, filter)
	if err != nil {
		msg := "couldn't load conversion history this time"
		logrus.WithError(err).WithFields(logrus.Fields{"handler": "GetHistory", "merchant_id": merchantID}).Error(msg)
		writeError(w, http.StatusInternalServerError, msg)
		return
	}

	items := make([]conversionResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, toConversionResponse(&page.Items[i]))
	}
	writeData(w, http.StatusOK, historyResponse{Items: items, Pagination: page.Pagination})
}

func parseHistoryFilter(w http.ResponseWriter, r *http.Request) (domain.HistoryFilter, bool) {
	var filter domain.HistoryFilter
	q := r.URL.Query()

	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			writeError(w, http.StatusBadRequest, "invalid page parameter")
			return filter, false
		}
		filter.Page = page
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit parameter")
			return filter, false
		}
		filter.PageSize = limit
	}
	if raw := q.Get("status"); raw != "" {
		status := domain.ConversionStatus(raw)
		switch status {
		case domain.StatusPending, domain.StatusProcessing, domain.StatusCompleted, domain.StatusFailed, domain.StatusCancelled:
			filter.Status = &status
		default:
			writeError(w, http.StatusBadRequest, "invalid status parameter")
			return filter, false
		}
	}
	if raw := q.Get("startDate"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid startDate parameter")
			return filter, false
		}
		filter.From = &from
	}
	if raw := q.Get("endDate"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid endDate parameter")
			return filter, false
		}
		filter.To = &to
	}
	return filter, true
}
