// Package salereview handles the pending-review queue for ambiguous sale rows.
package salereview

import (
	"context"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Repository handles pending sale review persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new sale review repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

// reviewRow is the database shape: the sale row and candidate set are stored
// as jsonb since candidates are point-in-time evidence, not live references.
type reviewRow struct {
	ID                     string                                  `db:"id"`
	AgencyID               string                                  `db:"agency_id"`
	UploadID               *string                                 `db:"upload_id"`
	PlaceholderHouseholdID string                                  `db:"placeholder_household_id"`
	RowData                database.JSONB[models.SaleRow]          `db:"row_data"`
	Candidates             database.JSONB[[]models.MatchCandidate] `db:"candidates"`
	Reason                 string                                  `db:"reason"`
	Status                 string                                  `db:"status"`
	CreatedAt              time.Time                               `db:"created_at"`
	ResolvedAt             *time.Time                              `db:"resolved_at"`
	ResolvedBy             *string                                 `db:"resolved_by"`
}

func (row reviewRow) toModel() models.PendingSaleReview {
	return models.PendingSaleReview{
		ID:                     row.ID,
		AgencyID:               row.AgencyID,
		UploadID:               row.UploadID,
		PlaceholderHouseholdID: row.PlaceholderHouseholdID,
		Row:                    row.RowData.Data,
		Candidates:             row.Candidates.Data,
		Reason:                 row.Reason,
		Status:                 row.Status,
		CreatedAt:              row.CreatedAt,
		ResolvedAt:             row.ResolvedAt,
		ResolvedBy:             row.ResolvedBy,
	}
}

// Create records a pending review.
func (r *Repository) Create(ctx context.Context, review *models.PendingSaleReview) error {
	ctx, span := tracing.StartSpan(ctx, "salereview.Repository.Create")
	defer span.End()

	ib := sqlbuilder.PostgreSQL.NewInsertBuilder()
	ib.InsertInto("pending_sale_reviews")
	ib.Cols("id", "agency_id", "upload_id", "placeholder_household_id", "row_data", "candidates", "reason", "status", "created_at")
	ib.Values(
		review.ID,
		review.AgencyID,
		review.UploadID,
		review.PlaceholderHouseholdID,
		database.JSONB[models.SaleRow]{Data: review.Row},
		database.JSONB[[]models.MatchCandidate]{Data: review.Candidates},
		review.Reason,
		review.Status,
		review.CreatedAt,
	)

	query, args := ib.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"agency_id": review.AgencyID, "review_id": review.ID}).Error("Failed to create sale review")
		return httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to create sale review: %v", err)
	}
	return nil
}

// GetByID returns one review, or nil when it does not exist.
func (r *Repository) GetByID(ctx context.Context, agencyID, reviewID string) (*models.PendingSaleReview, error) {
	ctx, span := tracing.StartSpan(ctx, "salereview.Repository.GetByID")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "agency_id", "upload_id", "placeholder_household_id", "row_data", "candidates", "reason", "status", "created_at", "resolved_at", "resolved_by")
	sb.From("pending_sale_reviews")
	sb.Where(
		sb.Equal("agency_id", agencyID),
		sb.Equal("id", reviewID),
	)

	query, args := sb.Build()
	var row reviewRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"agency_id": agencyID, "review_id": reviewID}).Error("Failed to get sale review")
		return nil, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to get sale review: %v", err)
	}

	review := row.toModel()
	return &review, nil
}

// ListPending returns the agency's open reviews, oldest first.
func (r *Repository) ListPending(ctx context.Context, agencyID string, limit int) ([]models.PendingSaleReview, error) {
	ctx, span := tracing.StartSpan(ctx, "salereview.Repository.ListPending")
	defer span.End()

	if limit <= 0 {
		limit = 50
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "agency_id", "upload_id", "placeholder_household_id", "row_data", "candidates", "reason", "status", "created_at", "resolved_at", "resolved_by")
	sb.From("pending_sale_reviews")
	sb.Where(
		sb.Equal("agency_id", agencyID),
		sb.Equal("status", models.SaleReviewStatusPending),
	)
	sb.OrderBy("created_at ASC")
	sb.Limit(limit)

	query, args := sb.Build()
	var rows []reviewRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"agency_id": agencyID}).Error("Failed to list pending sale reviews")
		return nil, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to list sale reviews: %v", err)
	}

	reviews := make([]models.PendingSaleReview, 0, len(rows))
	for _, row := range rows {
		reviews = append(reviews, row.toModel())
	}
	return reviews, nil
}

// UpdateStatus resolves a review. Only pending reviews can transition, so a
// double-resolve reports no rows updated.
func (r *Repository) UpdateStatus(ctx context.Context, agencyID, reviewID, status string, resolvedBy *string) error {
	ctx, span := tracing.StartSpan(ctx, "salereview.Repository.UpdateStatus")
	defer span.End()

	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update("pending_sale_reviews")
	ub.Set(
		ub.Assign("status", status),
		ub.Assign("resolved_at", time.Now().UTC()),
		ub.Assign("resolved_by", resolvedBy),
	)
	ub.Where(
		ub.Equal("agency_id", agencyID),
		ub.Equal("id", reviewID),
		ub.Equal("status", models.SaleReviewStatusPending),
	)

	query, args := ub.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"agency_id": agencyID, "review_id": reviewID}).Error("Failed to update sale review status")
		return httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to update sale review: %v", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to update sale review: %v", err)
	}
	if affected == 0 {
		return httperror.NewHTTPError(http.StatusConflict, "review is not pending")
	}
	return nil
}
