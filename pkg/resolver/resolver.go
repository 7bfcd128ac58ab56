package resolver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/Ramsey-B/clover/pkg/matching"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/normalize"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Resolver resolves one natural-key group of sale rows to a household and
// records the resulting sales. Instances are safe for concurrent use; each
// ResolveGroup call touches only its own group's rows.
type Resolver struct {
	logger ectologger.Logger
	store  Store
	scorer *matching.Scorer
	policy matching.Policy
	staff  *matching.StaffMatcher
	config matching.EngineConfig
}

// New creates a new resolver
func New(logger ectologger.Logger, store Store, config matching.EngineConfig) *Resolver {
	return &Resolver{
		logger: logger,
		store:  store,
		scorer: matching.NewScorer(config),
		policy: matching.NewPolicy(config),
		staff:  matching.NewStaffMatcher(config),
		config: config,
	}
}

// GroupResult is the immutable outcome of resolving one row group. The
// orchestrator folds results into the upload total only after the whole batch
// settles.
type GroupResult struct {
	HouseholdKey       string
	HouseholdID        string
	Created            bool
	AutoMatched        bool
	NeedsReview        bool
	NeedsAttention     bool
	Reason             models.MatchReason
	Review             *models.PendingSaleReview
	RecordsProcessed   int
	SalesCreated       int
	QuotesLinked       int
	MatchedStaffIDs    []string
	UnmatchedProducers []string
	RowErrors          []string
}

// ResolveGroup resolves the household for a group of rows sharing a natural
// key, then records each row's sale independently. A returned error means the
// household itself could not be resolved; per-row failures are captured as
// row errors inside the result instead.
func (r *Resolver) ResolveGroup(ctx context.Context, uctx models.UploadContext, key string, rows []models.SaleRow, roster []models.StaffMember) (*GroupResult, error) {
	ctx, span := tracing.StartSpan(ctx, "resolver.Resolver.ResolveGroup")
	defer span.End()

	if len(rows) == 0 {
		return nil, errors.New("empty row group")
	}

	primary := rows[0]
	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"agency_id":     uctx.AgencyID,
		"upload_id":     uctx.UploadID,
		"household_key": key,
		"rows":          len(rows),
	})

	result := &GroupResult{HouseholdKey: key}

	primaryStaffID := r.staff.Resolve(primary, roster)

	household, err := r.resolveHousehold(ctx, uctx, primary, primaryStaffID, result)
	if err != nil {
		return nil, err
	}
	result.HouseholdID = household.ID

	if !result.Created {
		update := models.HouseholdSaleUpdate{
			Status: models.HouseholdStatusSold,
			SoldAt: &primary.SaleDate,
		}
		if primaryStaffID != "" {
			update.StaffID = &primaryStaffID
		}
		if err := r.store.UpdateHouseholdOnSale(ctx, uctx.AgencyID, household.ID, update); err != nil {
			log.WithError(err).Error("Failed to mark household sold")
			result.RowErrors = append(result.RowErrors, rowError(primary, "matched a customer record but the record could not be updated"))
		}
	}

	seenStaff := make(map[string]bool)
	for _, row := range rows {
		r.recordSale(ctx, uctx, household.ID, row, roster, seenStaff, result)
		result.RecordsProcessed++
	}

	log.WithFields(map[string]any{
		"household_id":  household.ID,
		"created":       result.Created,
		"needs_review":  result.NeedsReview,
		"sales_created": result.SalesCreated,
	}).Debug("Resolved row group")

	return result, nil
}

// resolveHousehold walks the match tiers in order: issued policy number,
// exact natural key, scored candidates, then creation.
func (r *Resolver) resolveHousehold(ctx context.Context, uctx models.UploadContext, primary models.SaleRow, staffID string, result *GroupResult) (*models.Household, error) {
	ctx, span := tracing.StartSpan(ctx, "resolver.Resolver.resolveHousehold")
	defer span.End()

	if primary.PolicyNumber != "" {
		household, err := r.store.GetHouseholdByIssuedPolicyNumber(ctx, uctx.AgencyID, primary.PolicyNumber)
		if err != nil {
			return nil, err
		}
		if household != nil {
			result.AutoMatched = true
			result.Reason = models.MatchReasonPolicyNumber
			return household, nil
		}
	}

	naturalKey := normalize.HouseholdKey(primary.FirstName, primary.LastName, primary.Zip)
	household, err := r.store.GetHouseholdByNaturalKey(ctx, uctx.AgencyID, naturalKey)
	if err != nil {
		return nil, err
	}
	if household != nil {
		result.AutoMatched = true
		result.Reason = models.MatchReasonNaturalKey
		return household, nil
	}

	candidates, err := r.findCandidates(ctx, uctx.AgencyID, primary, staffID)
	if err != nil {
		return nil, err
	}

	decision := r.policy.Decide(candidates)
	result.Reason = decision.Reason

	switch {
	case decision.Matched != nil:
		result.AutoMatched = true
		return &models.Household{ID: decision.Matched.HouseholdID, AgencyID: uctx.AgencyID}, nil

	case decision.Reason == models.MatchReasonNoCandidates:
		created, err := r.createHousehold(ctx, uctx, primary, staffID, naturalKey)
		if err != nil {
			return nil, err
		}
		result.Created = true
		result.NeedsAttention = true
		return created, nil

	default:
		// Ambiguous or low-confidence: park the group on a placeholder
		// household and queue it for a human.
		placeholder, err := r.createHousehold(ctx, uctx, primary, staffID, naturalKey)
		if err != nil {
			return nil, err
		}
		result.Created = true
		result.NeedsAttention = true
		result.NeedsReview = true

		review := &models.PendingSaleReview{
			ID:                     uuid.NewString(),
			AgencyID:               uctx.AgencyID,
			PlaceholderHouseholdID: placeholder.ID,
			Row:                    primary,
			Candidates:             decision.Review,
			Reason:                 string(decision.Reason),
			Status:                 models.SaleReviewStatusPending,
			CreatedAt:              time.Now().UTC(),
		}
		if uctx.UploadID != "" {
			uploadID := uctx.UploadID
			review.UploadID = &uploadID
		}

		if err := r.store.CreateSaleReview(ctx, review); err != nil {
			r.logger.WithContext(ctx).WithError(err).Error("Failed to queue sale review")
			result.RowErrors = append(result.RowErrors, rowError(primary, "could not be queued for manual review"))
		} else {
			result.Review = review
		}
		return placeholder, nil
	}
}

// findCandidates loads households sharing the row's last name and keeps those
// whose normalized first name is exactly equal, scored against the row.
func (r *Resolver) findCandidates(ctx context.Context, agencyID string, primary models.SaleRow, staffID string) ([]models.MatchCandidate, error) {
	households, err := r.store.FindHouseholdsByLastName(ctx, agencyID, primary.LastName)
	if err != nil {
		return nil, err
	}

	firstName := normalize.Name(primary.FirstName)

	var candidates []models.MatchCandidate
	for _, household := range households {
		if normalize.Name(household.FirstName) != firstName {
			continue
		}
		candidates = append(candidates, r.scorer.Score(primary, household, staffID))
	}
	return candidates, nil
}

func (r *Resolver) createHousehold(ctx context.Context, uctx models.UploadContext, primary models.SaleRow, staffID, naturalKey string) (*models.Household, error) {
	req := models.CreateHouseholdRequest{
		FirstName:      primary.FirstName,
		LastName:       primary.LastName,
		Zip:            normalize.Zip5(primary.Zip),
		NaturalKey:     naturalKey,
		Status:         models.HouseholdStatusSold,
		NeedsAttention: true,
	}
	if staffID != "" {
		req.StaffID = &staffID
	}

	contactID, err := r.store.FindOrCreateContact(ctx, uctx.AgencyID, primary.FirstName, primary.LastName, normalize.Zip5(primary.Zip))
	if err != nil {
		// Contact linkage is best effort; the household still gets created.
		r.logger.WithContext(ctx).WithError(err).Warn("Failed to link contact for new household")
	} else if contactID != "" {
		req.ContactID = &contactID
	}

	return r.store.CreateHousehold(ctx, uctx.AgencyID, req)
}

// recordSale inserts one row's sale against the resolved household and tracks
// per-row staff and quote linkage.
func (r *Resolver) recordSale(ctx context.Context, uctx models.UploadContext, householdID string, row models.SaleRow, roster []models.StaffMember, seenStaff map[string]bool, result *GroupResult) {
	rowStaffID := r.staff.Resolve(row, roster)
	if rowStaffID == "" {
		if raw := matching.Identifier(row); raw != "" {
			result.UnmatchedProducers = append(result.UnmatchedProducers, raw)
		}
	} else if !seenStaff[rowStaffID] {
		seenStaff[rowStaffID] = true
		result.MatchedStaffIDs = append(result.MatchedStaffIDs, rowStaffID)
	}

	req := models.CreateSaleRequest{
		HouseholdID:  householdID,
		SaleDate:     row.SaleDate,
		ProductType:  normalize.ProductType(row.ProductType),
		PremiumCents: row.PremiumCents,
		ItemCount:    row.ItemCount,
	}
	if rowStaffID != "" {
		req.StaffID = &rowStaffID
	}
	if row.PolicyNumber != "" {
		policyNumber := row.PolicyNumber
		req.PolicyNumber = &policyNumber
	}
	if uctx.UploadID != "" {
		uploadID := uctx.UploadID
		req.UploadID = &uploadID
	}

	quote, err := r.store.FindLatestQuoteByProductType(ctx, householdID, req.ProductType)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Warn("Failed to look up quote for sale")
	} else if quote != nil {
		quoteID := quote.ID
		req.QuoteID = &quoteID
	}

	if _, err := r.store.CreateSale(ctx, uctx.AgencyID, req); err != nil {
		if errors.Is(err, ErrDuplicateSale) {
			result.RowErrors = append(result.RowErrors, rowError(row, "duplicate sale, skipped"))
			return
		}
		result.RowErrors = append(result.RowErrors, rowError(row, "failed to record sale"))
		return
	}

	result.SalesCreated++
	if req.QuoteID != nil {
		result.QuotesLinked++
	}
}

// rowError formats a row-level failure for the upload result.
func rowError(row models.SaleRow, reason string) string {
	policy := row.PolicyNumber
	if policy == "" {
		policy = "none"
	}
	return fmt.Sprintf("Row %d: %s %s (policy %s) %s", row.RowIndex, row.FirstName, row.LastName, policy, reason)
}

// RowErrors converts a whole group's rows to row errors when the group failed
// before any row could be processed.
func RowErrors(rows []models.SaleRow, reason string) []string {
	errs := make([]string, 0, len(rows))
	for _, row := range rows {
		errs = append(errs, rowError(row, reason))
	}
	return errs
}
