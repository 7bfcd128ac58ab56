// Package sale handles sale persistence.
package sale

import (
	"context"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/resolver"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Repository handles sale persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new sale repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

// Insert creates a sale. Re-uploads of the same report hit the policy-number
// unique index and come back as resolver.ErrDuplicateSale so the caller can
// skip the row.
func (r *Repository) Insert(ctx context.Context, agencyID string, req models.CreateSaleRequest) (*models.Sale, error) {
	ctx, span := tracing.StartSpan(ctx, "sale.Repository.Insert")
	defer span.End()

	sale := models.Sale{
		ID:           uuid.NewString(),
		AgencyID:     agencyID,
		HouseholdID:  req.HouseholdID,
		StaffID:      req.StaffID,
		QuoteID:      req.QuoteID,
		SaleDate:     req.SaleDate,
		ProductType:  req.ProductType,
		PremiumCents: req.PremiumCents,
		ItemCount:    req.ItemCount,
		PolicyNumber: req.PolicyNumber,
		Source:       models.SaleSourceReportUpload,
		UploadID:     req.UploadID,
		CreatedAt:    time.Now().UTC(),
	}

	ib := sqlbuilder.PostgreSQL.NewInsertBuilder()
	ib.InsertInto("sales")
	ib.Cols("id", "agency_id", "household_id", "staff_id", "quote_id", "sale_date", "product_type", "premium_cents", "item_count", "policy_number", "source", "upload_id", "created_at")
	ib.Values(sale.ID, sale.AgencyID, sale.HouseholdID, sale.StaffID, sale.QuoteID, sale.SaleDate, sale.ProductType, sale.PremiumCents, sale.ItemCount, sale.PolicyNumber, sale.Source, sale.UploadID, sale.CreatedAt)

	query, args := ib.Build()
	// Matches the partial unique index; rows without a policy number never conflict.
	query += " ON CONFLICT (agency_id, policy_number) WHERE policy_number IS NOT NULL DO NOTHING"

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"agency_id": agencyID, "household_id": req.HouseholdID}).Error("Failed to insert sale")
		return nil, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to insert sale: %v", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to read insert result")
		return nil, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to insert sale: %v", err)
	}
	if affected == 0 {
		return nil, resolver.ErrDuplicateSale
	}

	return &sale, nil
}

// ListByUploadID returns the sales recorded by one upload run, newest first.
func (r *Repository) ListByUploadID(ctx context.Context, agencyID, uploadID string) ([]models.Sale, error) {
	ctx, span := tracing.StartSpan(ctx, "sale.Repository.ListByUploadID")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "agency_id", "household_id", "staff_id", "quote_id", "sale_date", "product_type", "premium_cents", "item_count", "policy_number", "source", "upload_id", "created_at")
	sb.From("sales")
	sb.Where(
		sb.Equal("agency_id", agencyID),
		sb.Equal("upload_id", uploadID),
	)
	sb.OrderBy("created_at DESC")

	query, args := sb.Build()
	var sales []models.Sale
	if err := r.db.SelectContext(ctx, &sales, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"agency_id": agencyID, "upload_id": uploadID}).Error("Failed to list sales by upload")
		return nil, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to list sales: %v", err)
	}
	return sales, nil
}

// ReassignHousehold moves an upload's sales from one household to another.
// Used when a reviewer approves a match against an existing household.
func (r *Repository) ReassignHousehold(ctx context.Context, agencyID, fromHouseholdID, toHouseholdID string) error {
	ctx, span := tracing.StartSpan(ctx, "sale.Repository.ReassignHousehold")
	defer span.End()

	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update("sales")
	ub.Set(ub.Assign("household_id", toHouseholdID))
	ub.Where(
		ub.Equal("agency_id", agencyID),
		ub.Equal("household_id", fromHouseholdID),
	)

	query, args := ub.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"agency_id": agencyID, "from": fromHouseholdID, "to": toHouseholdID}).Error("Failed to reassign sales")
		return httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to reassign sales: %v", err)
	}
	return nil
}
