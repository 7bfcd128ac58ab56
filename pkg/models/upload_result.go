package models

import "time"

// UploadResult is the aggregate outcome of one reconciliation run. Counters
// are folded from per-group results after each batch settles; nothing mutates
// a shared result while group work is in flight.
type UploadResult struct {
	UploadID           string              `json:"upload_id"`
	AgencyID           string              `json:"agency_id"`
	RecordsProcessed   int                 `json:"records_processed"`
	SalesCreated       int                 `json:"sales_created"`
	HouseholdsMatched  int                 `json:"households_matched"`
	HouseholdsCreated  int                 `json:"households_created"`
	QuotesLinked       int                 `json:"quotes_linked"`
	StaffMatched       int                 `json:"staff_matched"`
	UnmatchedProducers []string            `json:"unmatched_producers,omitempty"`
	NeedsAttention     int                 `json:"needs_attention"`
	AutoMatched        int                 `json:"auto_matched"`
	NeedsReview        int                 `json:"needs_review"`
	PendingReviews     []PendingSaleReview `json:"pending_reviews,omitempty"`
	RowErrors          []string            `json:"row_errors,omitempty"`
	StartedAt          time.Time           `json:"started_at"`
	CompletedAt        time.Time           `json:"completed_at"`
}

// Failed reports whether the run produced any row-level errors.
func (r *UploadResult) Failed() bool {
	return len(r.RowErrors) > 0
}
