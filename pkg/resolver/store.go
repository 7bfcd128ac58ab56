// Package resolver binds grouped sale rows to households and records the
// resulting sales, quotes links, and pending reviews.
package resolver

import (
	"context"
	"errors"

	"github.com/Ramsey-B/clover/pkg/models"
)

// ErrDuplicateSale is returned by Store.CreateSale when a sale with the same
// policy number already exists for the agency. Duplicates are skipped, never
// fatal.
var ErrDuplicateSale = errors.New("sale already exists")

// Store is the persistence surface the resolver needs. The repositories
// aggregate implements it against Postgres; tests substitute an in-memory
// fake.
type Store interface {
	// GetHouseholdByIssuedPolicyNumber finds the household owning a quote whose
	// issued policy number equals the given one. Returns nil when none exists.
	GetHouseholdByIssuedPolicyNumber(ctx context.Context, agencyID, policyNumber string) (*models.Household, error)

	// GetHouseholdByNaturalKey looks a household up by its exact natural key.
	// Returns nil when none exists.
	GetHouseholdByNaturalKey(ctx context.Context, agencyID, naturalKey string) (*models.Household, error)

	// FindHouseholdsByLastName returns candidate households sharing a last name
	// (case-insensitive), with their quotes attached.
	FindHouseholdsByLastName(ctx context.Context, agencyID, lastName string) ([]models.Household, error)

	// CreateHousehold inserts a household. On a natural-key collision with a
	// concurrent writer it returns the household that won the race.
	CreateHousehold(ctx context.Context, agencyID string, req models.CreateHouseholdRequest) (*models.Household, error)

	// UpdateHouseholdOnSale applies sale attribution to an existing household.
	UpdateHouseholdOnSale(ctx context.Context, agencyID, householdID string, update models.HouseholdSaleUpdate) error

	// ListStaffRoster returns the agency's active staff members.
	ListStaffRoster(ctx context.Context, agencyID string) ([]models.StaffMember, error)

	// FindLatestQuoteByProductType returns the household's most recent quote for
	// a product type, or nil when it has none.
	FindLatestQuoteByProductType(ctx context.Context, householdID, productType string) (*models.Quote, error)

	// CreateSale inserts a sale. Returns ErrDuplicateSale when the policy number
	// is already recorded for the agency.
	CreateSale(ctx context.Context, agencyID string, req models.CreateSaleRequest) (*models.Sale, error)

	// FindOrCreateContact resolves the contact record for a person by last name
	// and zip, creating it (with the given first name) when absent, and returns
	// its ID.
	FindOrCreateContact(ctx context.Context, agencyID, firstName, lastName, zip string) (string, error)

	// CreateSaleReview records a pending review for an ambiguous row group.
	CreateSaleReview(ctx context.Context, review *models.PendingSaleReview) error
}
