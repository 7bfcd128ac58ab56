package models

import "time"

// StaffMember is one member of an agency's roster. Sale rows reference staff
// by a raw sub-producer code or free-text name that must be resolved.
type StaffMember struct {
	ID        string    `json:"id" db:"id"`
	AgencyID  string    `json:"agency_id" db:"agency_id"`
	Name      string    `json:"name" db:"name"`
	Code      string    `json:"code" db:"code"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
