package models

import "time"

// SaleSourceReportUpload is the provenance tag for sales created by the
// reconciliation pipeline.
const SaleSourceReportUpload = "report_upload"

// Sale is created by the reconciliation pipeline, one per resolved SaleRow.
type Sale struct {
	ID           string    `json:"id" db:"id"`
	AgencyID     string    `json:"agency_id" db:"agency_id"`
	HouseholdID  string    `json:"household_id" db:"household_id"`
	StaffID      *string   `json:"staff_id,omitempty" db:"staff_id"`
	QuoteID      *string   `json:"quote_id,omitempty" db:"quote_id"`
	SaleDate     time.Time `json:"sale_date" db:"sale_date"`
	ProductType  string    `json:"product_type" db:"product_type"`
	PremiumCents int64     `json:"premium_cents" db:"premium_cents"`
	ItemCount    int       `json:"item_count" db:"item_count"`
	PolicyNumber *string   `json:"policy_number,omitempty" db:"policy_number"`
	Source       string    `json:"source" db:"source"`
	UploadID     *string   `json:"upload_id,omitempty" db:"upload_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// CreateSaleRequest is the request to insert a sale during resolution.
type CreateSaleRequest struct {
	HouseholdID  string    `json:"household_id" validate:"required"`
	StaffID      *string   `json:"staff_id,omitempty"`
	QuoteID      *string   `json:"quote_id,omitempty"`
	SaleDate     time.Time `json:"sale_date" validate:"required"`
	ProductType  string    `json:"product_type" validate:"required"`
	PremiumCents int64     `json:"premium_cents"`
	ItemCount    int       `json:"item_count"`
	PolicyNumber *string   `json:"policy_number,omitempty"`
	UploadID     *string   `json:"upload_id,omitempty"`
}
