package models

import "time"

// SaleRow is one parsed line item from an uploaded sales report. Rows are
// produced by the report parser and consumed exactly once per pipeline run.
type SaleRow struct {
	RowIndex        int       `json:"row_index"`
	FirstName       string    `json:"first_name" validate:"required"`
	LastName        string    `json:"last_name" validate:"required"`
	Zip             string    `json:"zip" validate:"required"`
	SaleDate        time.Time `json:"sale_date" validate:"required"`
	ProductType     string    `json:"product_type" validate:"required"`
	PremiumCents    int64     `json:"premium_cents" validate:"gte=0"`
	ItemCount       int       `json:"item_count"`
	PolicyNumber    string    `json:"policy_number,omitempty"`
	SubProducerCode string    `json:"sub_producer_code,omitempty"`
	SubProducerName string    `json:"sub_producer_name,omitempty"`
}

// UploadContext carries the scope and attribution for one upload run.
type UploadContext struct {
	AgencyID        string `json:"agency_id"`
	UploadID        string `json:"upload_id"`
	RequestedBy     string `json:"requested_by,omitempty"`
	RequestedByName string `json:"requested_by_name,omitempty"`
}
