// Package contact handles contact persistence. Households created by the
// pipeline link to a contact record when one can be found or made.
package contact

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
	"github.com/Ramsey-B/clover/pkg/tracing"
)

const uniqueViolation = "23505"

// Repository handles contact persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new contact repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

// FindOrCreate resolves the contact for a person by last name and zip,
// creating it when absent, and returns its ID. First name is recorded on
// creation but is not part of the identity: household members sharing a last
// name and zip collapse onto one contact.
func (r *Repository) FindOrCreate(ctx context.Context, agencyID, firstName, lastName, zip string) (string, error) {
	ctx, span := tracing.StartSpan(ctx, "contact.Repository.FindOrCreate")
	defer span.End()

	id, err := r.find(ctx, agencyID, lastName, zip)
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}

	contactID := uuid.NewString()
	ib := sqlbuilder.PostgreSQL.NewInsertBuilder()
	ib.InsertInto("contacts")
	ib.Cols("id", "agency_id", "first_name", "last_name", "zip", "created_at")
	ib.Values(contactID, agencyID, strings.TrimSpace(firstName), strings.TrimSpace(lastName), zip, time.Now().UTC())

	query, args := ib.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == uniqueViolation {
			return r.find(ctx, agencyID, lastName, zip)
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"agency_id": agencyID}).Error("Failed to create contact")
		return "", httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to create contact: %v", err)
	}

	return contactID, nil
}

func (r *Repository) find(ctx context.Context, agencyID, lastName, zip string) (string, error) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id")
	sb.From("contacts")
	sb.Where(
		sb.Equal("agency_id", agencyID),
		sb.Equal("LOWER(last_name)", strings.ToLower(strings.TrimSpace(lastName))),
		sb.Equal("zip", zip),
	)
	sb.Limit(1)

	query, args := sb.Build()
	var id string
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return "", nil
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"agency_id": agencyID}).Error("Failed to find contact")
		return "", httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to find contact: %v", err)
	}
	return id, nil
}
