package models

import "time"

// PendingSaleReview statuses
const (
	SaleReviewStatusPending  = "pending"
	SaleReviewStatusApproved = "approved"
	SaleReviewStatusRejected = "rejected"
)

// PendingSaleReview is a sale row whose household binding was ambiguous. The
// pipeline creates a placeholder household (flagged needs_attention) and parks
// the row with its scored candidate set here for human adjudication.
type PendingSaleReview struct {
	ID                     string           `json:"id" db:"id"`
	AgencyID               string           `json:"agency_id" db:"agency_id"`
	UploadID               *string          `json:"upload_id,omitempty" db:"upload_id"`
	PlaceholderHouseholdID string           `json:"placeholder_household_id" db:"placeholder_household_id"`
	Row                    SaleRow          `json:"row" db:"-"`
	Candidates             []MatchCandidate `json:"candidates" db:"-"`
	Reason                 string           `json:"reason" db:"reason"`
	Status                 string           `json:"status" db:"status"`
	CreatedAt              time.Time        `json:"created_at" db:"created_at"`
	ResolvedAt             *time.Time       `json:"resolved_at,omitempty" db:"resolved_at"`
	ResolvedBy             *string          `json:"resolved_by,omitempty" db:"resolved_by"`
}
