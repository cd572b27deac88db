package domain

import "time"

// HistoryFilter narrows a merchant's conversion history query.
type HistoryFilter struct {
	Page     int
	PageSize int
	Status   *ConversionStatus
	From     *time.Time
	To       *time.Time
}

type Pagination struct {
	Current int `json:"current"`
	Pages   int `json:"pages"`
	Total   int `json:"total"`
}

type HistoryPage struct {
	Items      []ConversionTransaction
	Pagination Pagination
}

// ConversionStats aggregates a merchant's conversions over a period window.
type ConversionStats struct {
	TotalConversions int     `json:"total_conversions"`
	TotalFiatAmount  float64 `json:"total_fiat_amount"`
	TotalFees        float64 `json:"total_fees"`
	CompletedCount   int     `json:"completed_count"`
	FailedCount      int     `json:"failed_count"`
	// AvgProcessingMs is completed-minus-initiated averaged over completed
	// conversions, zero when none completed.
	AvgProcessingMs float64 `json:"avg_processing_ms"`
}
