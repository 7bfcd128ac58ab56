// Package household handles household persistence.
package household

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"
	"github.com/lib/pq"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

const uniqueViolation = "23505"

var householdColumns = []string{
	"h.id", "h.agency_id", "h.first_name", "h.last_name", "h.zip", "h.natural_key",
	"h.status", "h.staff_id", "h.needs_attention", "h.lead_source_id", "h.contact_id",
	"h.sold_at", "h.created_at", "h.updated_at",
}

// Repository handles household persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new household repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

// GetByNaturalKey returns the household with the exact natural key, or nil.
func (r *Repository) GetByNaturalKey(ctx context.Context, agencyID, naturalKey string) (*models.Household, error) {
	ctx, span := tracing.StartSpan(ctx, "household.Repository.GetByNaturalKey")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(householdColumns...)
	sb.Select("ls.name AS lead_source_name")
	sb.From("households h")
	sb.JoinWithOption(sqlbuilder.LeftJoin, "lead_sources ls", "ls.id = h.lead_source_id")
	sb.Where(
		sb.Equal("h.agency_id", agencyID),
		sb.Equal("h.natural_key", naturalKey),
	)
	sb.Limit(1)

	query, args := sb.Build()
	var household models.Household
	if err := r.db.GetContext(ctx, &household, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"agency_id": agencyID, "natural_key": naturalKey}).Error("Failed to get household by natural key")
		return nil, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to get household: %v", err)
	}
	return &household, nil
}

// FindByLastName returns households sharing a last name (case-insensitive)
// with their quotes attached, for candidate scoring.
func (r *Repository) FindByLastName(ctx context.Context, agencyID, lastName string) ([]models.Household, error) {
	ctx, span := tracing.StartSpan(ctx, "household.Repository.FindByLastName")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(householdColumns...)
	sb.Select("ls.name AS lead_source_name")
	sb.From("households h")
	sb.JoinWithOption(sqlbuilder.LeftJoin, "lead_sources ls", "ls.id = h.lead_source_id")
	sb.Where(
		sb.Equal("h.agency_id", agencyID),
		sb.Equal("LOWER(h.last_name)", strings.ToLower(strings.TrimSpace(lastName))),
	)

	query, args := sb.Build()
	var households []models.Household
	if err := r.db.SelectContext(ctx, &households, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"agency_id": agencyID}).Error("Failed to find households by last name")
		return nil, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to find households: %v", err)
	}

	if err := r.attachQuotes(ctx, households); err != nil {
		return nil, err
	}
	return households, nil
}

// attachQuotes loads quotes for all given households in one query.
func (r *Repository) attachQuotes(ctx context.Context, households []models.Household) error {
	if len(households) == 0 {
		return nil
	}

	ids := make([]any, 0, len(households))
	index := make(map[string]int, len(households))
	for i, h := range households {
		ids = append(ids, h.ID)
		index[h.ID] = i
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "household_id", "product_type", "premium_cents", "quote_date", "issued_policy_number", "created_at")
	sb.From("quotes")
	sb.Where(sb.In("household_id", ids...))
	sb.OrderBy("quote_date DESC")

	query, args := sb.Build()
	var quotes []models.Quote
	if err := r.db.SelectContext(ctx, &quotes, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to load quotes for households")
		return httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to load quotes: %v", err)
	}

	for _, q := range quotes {
		if i, ok := index[q.HouseholdID]; ok {
			households[i].Quotes = append(households[i].Quotes, q)
		}
	}
	return nil
}

// Create inserts a household. On a natural-key collision with a concurrent
// writer the existing household wins and is returned instead.
func (r *Repository) Create(ctx context.Context, agencyID string, req models.CreateHouseholdRequest) (*models.Household, error) {
	ctx, span := tracing.StartSpan(ctx, "household.Repository.Create")
	defer span.End()

	now := time.Now().UTC()
	household := models.Household{
		ID:             uuid.NewString(),
		AgencyID:       agencyID,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Zip:            req.Zip,
		NaturalKey:     req.NaturalKey,
		Status:         req.Status,
		StaffID:        req.StaffID,
		NeedsAttention: req.NeedsAttention,
		ContactID:      req.ContactID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if household.Status == "" {
		household.Status = models.HouseholdStatusLead
	}

	ib := sqlbuilder.PostgreSQL.NewInsertBuilder()
	ib.InsertInto("households")
	ib.Cols("id", "agency_id", "first_name", "last_name", "zip", "natural_key", "status", "staff_id", "needs_attention", "contact_id", "created_at", "updated_at")
	ib.Values(household.ID, household.AgencyID, household.FirstName, household.LastName, household.Zip, household.NaturalKey, household.Status, household.StaffID, household.NeedsAttention, household.ContactID, household.CreatedAt, household.UpdatedAt)

	query, args := ib.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == uniqueViolation {
			// Another group or run created the same natural key first; bind
			// to whichever row won the race.
			r.logger.WithContext(ctx).WithFields(map[string]any{"agency_id": agencyID, "natural_key": req.NaturalKey}).Info("Household already exists, reusing")
			existing, getErr := r.GetByNaturalKey(ctx, agencyID, req.NaturalKey)
			if getErr != nil {
				return nil, getErr
			}
			if existing != nil {
				return existing, nil
			}
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"agency_id": agencyID, "natural_key": req.NaturalKey}).Error("Failed to create household")
		return nil, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to create household: %v", err)
	}

	return &household, nil
}

// UpdateOnSale marks a household sold and assigns staff when resolved. The
// staff assignment never overwrites an existing one with NULL.
func (r *Repository) UpdateOnSale(ctx context.Context, agencyID, householdID string, update models.HouseholdSaleUpdate) error {
	ctx, span := tracing.StartSpan(ctx, "household.Repository.UpdateOnSale")
	defer span.End()

	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update("households")
	assignments := []string{
		ub.Assign("status", update.Status),
		ub.Assign("updated_at", time.Now().UTC()),
	}
	if update.SoldAt != nil {
		assignments = append(assignments, ub.Assign("sold_at", *update.SoldAt))
	}
	if update.StaffID != nil {
		assignments = append(assignments, ub.Assign("staff_id", *update.StaffID))
	}
	ub.Set(assignments...)
	ub.Where(
		ub.Equal("agency_id", agencyID),
		ub.Equal("id", householdID),
	)

	query, args := ub.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"agency_id": agencyID, "household_id": householdID}).Error("Failed to update household on sale")
		return httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to update household: %v", err)
	}
	return nil
}
