// Package repositories aggregates the per-table repositories behind the
// persistence surface the resolver consumes.
package repositories

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/internal/repositories/contact"
	"github.com/Ramsey-B/clover/internal/repositories/household"
	"github.com/Ramsey-B/clover/internal/repositories/quote"
	"github.com/Ramsey-B/clover/internal/repositories/sale"
	"github.com/Ramsey-B/clover/internal/repositories/salereview"
	"github.com/Ramsey-B/clover/internal/repositories/staffmember"
	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/resolver"
)

// Store bundles the repositories into the resolver's Store interface.
type Store struct {
	Households *household.Repository
	Quotes     *quote.Repository
	Sales      *sale.Repository
	Staff      *staffmember.Repository
	Reviews    *salereview.Repository
	Contacts   *contact.Repository
}

var _ resolver.Store = (*Store)(nil)

// NewStore creates the repository aggregate
func NewStore(db database.DB, logger ectologger.Logger) *Store {
	return &Store{
		Households: household.NewRepository(db, logger),
		Quotes:     quote.NewRepository(db, logger),
		Sales:      sale.NewRepository(db, logger),
		Staff:      staffmember.NewRepository(db, logger),
		Reviews:    salereview.NewRepository(db, logger),
		Contacts:   contact.NewRepository(db, logger),
	}
}

func (s *Store) GetHouseholdByIssuedPolicyNumber(ctx context.Context, agencyID, policyNumber string) (*models.Household, error) {
	return s.Quotes.GetHouseholdByIssuedPolicyNumber(ctx, agencyID, policyNumber)
}

func (s *Store) GetHouseholdByNaturalKey(ctx context.Context, agencyID, naturalKey string) (*models.Household, error) {
	return s.Households.GetByNaturalKey(ctx, agencyID, naturalKey)
}

func (s *Store) FindHouseholdsByLastName(ctx context.Context, agencyID, lastName string) ([]models.Household, error) {
	return s.Households.FindByLastName(ctx, agencyID, lastName)
}

func (s *Store) CreateHousehold(ctx context.Context, agencyID string, req models.CreateHouseholdRequest) (*models.Household, error) {
	return s.Households.Create(ctx, agencyID, req)
}

func (s *Store) UpdateHouseholdOnSale(ctx context.Context, agencyID, householdID string, update models.HouseholdSaleUpdate) error {
	return s.Households.UpdateOnSale(ctx, agencyID, householdID, update)
}

func (s *Store) ListStaffRoster(ctx context.Context, agencyID string) ([]models.StaffMember, error) {
	return s.Staff.ListRoster(ctx, agencyID)
}

func (s *Store) FindLatestQuoteByProductType(ctx context.Context, householdID, productType string) (*models.Quote, error) {
	return s.Quotes.FindLatestByProductType(ctx, householdID, productType)
}

func (s *Store) CreateSale(ctx context.Context, agencyID string, req models.CreateSaleRequest) (*models.Sale, error) {
	return s.Sales.Insert(ctx, agencyID, req)
}

func (s *Store) FindOrCreateContact(ctx context.Context, agencyID, firstName, lastName, zip string) (string, error) {
	return s.Contacts.FindOrCreate(ctx, agencyID, firstName, lastName, zip)
}

func (s *Store) CreateSaleReview(ctx context.Context, review *models.PendingSaleReview) error {
	return s.Reviews.Create(ctx, review)
}
