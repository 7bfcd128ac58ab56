package models

import "time"

// Household lifecycle statuses
const (
	HouseholdStatusLead   = "lead"
	HouseholdStatusQuoted = "quoted"
	HouseholdStatusSold   = "sold"
)

// Household is a customer/prospect entity keyed loosely by name+zip. The
// reconciliation pipeline creates and updates households but never deletes them.
type Household struct {
	ID             string     `json:"id" db:"id"`
	AgencyID       string     `json:"agency_id" db:"agency_id"`
	FirstName      string     `json:"first_name" db:"first_name"`
	LastName       string     `json:"last_name" db:"last_name"`
	Zip            string     `json:"zip" db:"zip"`
	NaturalKey     string     `json:"natural_key" db:"natural_key"`
	Status         string     `json:"status" db:"status"`
	StaffID        *string    `json:"staff_id,omitempty" db:"staff_id"`
	NeedsAttention bool       `json:"needs_attention" db:"needs_attention"`
	LeadSourceID   *string    `json:"lead_source_id,omitempty" db:"lead_source_id"`
	LeadSourceName *string    `json:"lead_source_name,omitempty" db:"lead_source_name"`
	ContactID      *string    `json:"contact_id,omitempty" db:"contact_id"`
	SoldAt         *time.Time `json:"sold_at,omitempty" db:"sold_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`

	// Quotes are attached by candidate lookups; not a stored column.
	Quotes []Quote `json:"quotes,omitempty" db:"-"`
}

// CreateHouseholdRequest is the request to create a household during resolution.
type CreateHouseholdRequest struct {
	FirstName      string  `json:"first_name" validate:"required"`
	LastName       string  `json:"last_name" validate:"required"`
	Zip            string  `json:"zip" validate:"required"`
	NaturalKey     string  `json:"natural_key" validate:"required"`
	Status         string  `json:"status"`
	StaffID        *string `json:"staff_id,omitempty"`
	NeedsAttention bool    `json:"needs_attention"`
	ContactID      *string `json:"contact_id,omitempty"`
}

// HouseholdSaleUpdate is applied to a household when a sale is attributed to it.
type HouseholdSaleUpdate struct {
	Status  string     `json:"status"`
	SoldAt  *time.Time `json:"sold_at,omitempty"`
	StaffID *string    `json:"staff_id,omitempty"`
}
