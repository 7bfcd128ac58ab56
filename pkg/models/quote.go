package models

import "time"

// Quote is a prior price quotation on file for a household. The reconciliation
// pipeline reads quotes as matching evidence and links sales back to them; it
// never writes them.
type Quote struct {
	ID                 string    `json:"id" db:"id"`
	HouseholdID        string    `json:"household_id" db:"household_id"`
	ProductType        string    `json:"product_type" db:"product_type"`
	PremiumCents       int64     `json:"premium_cents" db:"premium_cents"`
	QuoteDate          time.Time `json:"quote_date" db:"quote_date"`
	IssuedPolicyNumber *string   `json:"issued_policy_number,omitempty" db:"issued_policy_number"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
}
