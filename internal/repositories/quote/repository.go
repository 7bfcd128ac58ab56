// Package quote handles quote lookups. Quotes are written by the quoting
// service; this pipeline only reads them.
package quote

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Repository handles quote persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new quote repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

// GetHouseholdByIssuedPolicyNumber returns the household owning a quote whose
// issued policy number equals the given one, or nil.
func (r *Repository) GetHouseholdByIssuedPolicyNumber(ctx context.Context, agencyID, policyNumber string) (*models.Household, error) {
	ctx, span := tracing.StartSpan(ctx, "quote.Repository.GetHouseholdByIssuedPolicyNumber")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(
		"h.id", "h.agency_id", "h.first_name", "h.last_name", "h.zip", "h.natural_key",
		"h.status", "h.staff_id", "h.needs_attention", "h.lead_source_id", "h.contact_id",
		"h.sold_at", "h.created_at", "h.updated_at",
	)
	sb.From("quotes q")
	sb.Join("households h", "h.id = q.household_id")
	sb.Where(
		sb.Equal("h.agency_id", agencyID),
		sb.Equal("q.issued_policy_number", policyNumber),
	)
	sb.Limit(1)

	query, args := sb.Build()
	var household models.Household
	if err := r.db.GetContext(ctx, &household, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"agency_id": agencyID}).Error("Failed to find household by issued policy number")
		return nil, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to find household by policy number: %v", err)
	}
	return &household, nil
}

// FindLatestByProductType returns the household's most recent quote for a
// product type, or nil when it has none.
func (r *Repository) FindLatestByProductType(ctx context.Context, householdID, productType string) (*models.Quote, error) {
	ctx, span := tracing.StartSpan(ctx, "quote.Repository.FindLatestByProductType")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "household_id", "product_type", "premium_cents", "quote_date", "issued_policy_number", "created_at")
	sb.From("quotes")
	sb.Where(
		sb.Equal("household_id", householdID),
		sb.Equal("product_type", productType),
	)
	sb.OrderBy("quote_date DESC")
	sb.Limit(1)

	query, args := sb.Build()
	var quote models.Quote
	if err := r.db.GetContext(ctx, &quote, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"household_id": householdID, "product_type": productType}).Error("Failed to find latest quote")
		return nil, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to find quote: %v", err)
	}
	return &quote, nil
}
