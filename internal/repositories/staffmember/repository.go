// Package staffmember handles staff roster lookups.
package staffmember

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

// Repository handles staff member persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new staff member repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

// ListRoster returns the agency's active staff. The roster is loaded once per
// reconciliation run and shared read-only across groups.
func (r *Repository) ListRoster(ctx context.Context, agencyID string) ([]models.StaffMember, error) {
	ctx, span := tracing.StartSpan(ctx, "staffmember.Repository.ListRoster")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "agency_id", "name", "code", "is_active", "created_at")
	sb.From("staff_members")
	sb.Where(
		sb.Equal("agency_id", agencyID),
		sb.Equal("is_active", true),
	)
	sb.OrderBy("name ASC")

	query, args := sb.Build()
	var roster []models.StaffMember
	if err := r.db.SelectContext(ctx, &roster, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"agency_id": agencyID}).Error("Failed to list staff roster")
		return nil, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to list staff roster: %v", err)
	}
	return roster, nil
}
