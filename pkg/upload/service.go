// Package upload orchestrates reconciliation runs: grouping rows by natural
// key, resolving groups concurrently in bounded batches, and folding results.
package upload

import (
	"context"
	"sync"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/metrics"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/normalize"
	"github.com/Ramsey-B/clover/pkg/resolver"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Config contains orchestration tuning knobs.
type Config struct {
	BatchSize        int // Row groups resolved concurrently per batch (default: 50)
	ProgressInterval int // Emit a progress event every N settled groups (default: 100)
}

// DefaultConfig returns default orchestration configuration
func DefaultConfig() Config {
	return Config{
		BatchSize:        50,
		ProgressInterval: 100,
	}
}

// Notifier receives upload lifecycle events.
type Notifier interface {
	UploadStarted(ctx context.Context, uctx models.UploadContext, totalRows int)
	UploadProgress(ctx context.Context, uctx models.UploadContext, processedGroups, totalGroups int)
	UploadCompleted(ctx context.Context, uctx models.UploadContext, result *models.UploadResult)
	UploadFailed(ctx context.Context, uctx models.UploadContext, reason string)
	SaleReviewQueued(ctx context.Context, uctx models.UploadContext, review *models.PendingSaleReview)
}

// ResultCache stores run results for status polling and invalidates derived
// agency summaries after a run changes the underlying data.
type ResultCache interface {
	SetUploadResult(ctx context.Context, uctx models.UploadContext, result *models.UploadResult) error
	InvalidateAgency(ctx context.Context, agencyID string) error
}

// Service runs reconciliation uploads.
type Service struct {
	logger   ectologger.Logger
	store    resolver.Store
	resolver *resolver.Resolver
	notifier Notifier
	cache    ResultCache
	config   Config
}

// NewService creates a new upload service
func NewService(logger ectologger.Logger, store resolver.Store, res *resolver.Resolver, notifier Notifier, cache ResultCache, config Config) *Service {
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultConfig().BatchSize
	}
	if config.ProgressInterval <= 0 {
		config.ProgressInterval = DefaultConfig().ProgressInterval
	}
	return &Service{
		logger:   logger,
		store:    store,
		resolver: res,
		notifier: notifier,
		cache:    cache,
		config:   config,
	}
}

// rowGroup is one natural-key group in upload order.
type rowGroup struct {
	key  string
	rows []models.SaleRow
}

// groupOutcome pairs a settled group with its result or error. Outcomes are
// written by exactly one goroutine each and read only after the batch settles.
type groupOutcome struct {
	group  rowGroup
	result *resolver.GroupResult
	err    error
}

// Run executes a reconciliation run to completion and returns its result.
// A non-nil error means the run aborted before processing any rows; per-row
// and per-group failures are reported inside the result instead.
func (s *Service) Run(ctx context.Context, uctx models.UploadContext, rows []models.SaleRow) (*models.UploadResult, error) {
	ctx, span := tracing.StartSpan(ctx, "upload.Service.Run")
	defer span.End()

	log := s.logger.WithContext(ctx).WithFields(map[string]any{
		"agency_id": uctx.AgencyID,
		"upload_id": uctx.UploadID,
		"rows":      len(rows),
	})

	started := time.Now().UTC()
	result := &models.UploadResult{
		UploadID:  uctx.UploadID,
		AgencyID:  uctx.AgencyID,
		StartedAt: started,
	}

	roster, err := s.store.ListStaffRoster(ctx, uctx.AgencyID)
	if err != nil {
		// Without the roster no staff attribution is possible anywhere in the
		// run, so abort with zero progress rather than mis-attribute.
		log.WithError(err).Error("Failed to load staff roster, aborting run")
		result.CompletedAt = time.Now().UTC()
		metrics.UploadRunsTotal.WithLabelValues(metrics.RunStatusFailed).Inc()
		if s.notifier != nil {
			s.notifier.UploadFailed(ctx, uctx, "staff roster unavailable")
		}
		return result, err
	}

	if s.notifier != nil {
		s.notifier.UploadStarted(ctx, uctx, len(rows))
	}
	// Snapshot the zero-progress result so the API can answer status polls
	// while the run is in flight. CompletedAt stays zero until the run ends.
	s.snapshot(ctx, uctx, result)

	groups := groupRows(rows)
	log.WithFields(map[string]any{"groups": len(groups)}).Info("Starting reconciliation run")

	seenStaff := make(map[string]bool)
	seenProducers := make(map[string]bool)
	settled := 0

	for start := 0; start < len(groups); start += s.config.BatchSize {
		end := start + s.config.BatchSize
		if end > len(groups) {
			end = len(groups)
		}
		batch := groups[start:end]

		outcomes := make([]groupOutcome, len(batch))
		var wg sync.WaitGroup
		for i, group := range batch {
			wg.Add(1)
			metrics.GroupsInFlight.Inc()
			go func(i int, group rowGroup) {
				defer wg.Done()
				defer metrics.GroupsInFlight.Dec()
				res, err := s.resolver.ResolveGroup(ctx, uctx, group.key, group.rows, roster)
				outcomes[i] = groupOutcome{group: group, result: res, err: err}
			}(i, group)
		}
		wg.Wait()

		for _, outcome := range outcomes {
			s.fold(result, outcome, seenStaff, seenProducers)
			settled++
			if s.notifier != nil && outcome.result != nil && outcome.result.Review != nil {
				s.notifier.SaleReviewQueued(ctx, uctx, outcome.result.Review)
			}
			if settled%s.config.ProgressInterval == 0 {
				if s.notifier != nil {
					s.notifier.UploadProgress(ctx, uctx, settled, len(groups))
				}
				s.snapshot(ctx, uctx, result)
			}
		}
	}

	result.CompletedAt = time.Now().UTC()
	metrics.UploadRunDuration.Observe(result.CompletedAt.Sub(started).Seconds())
	metrics.UploadRunsTotal.WithLabelValues(metrics.RunStatusCompleted).Inc()

	if s.cache != nil {
		if err := s.cache.SetUploadResult(ctx, uctx, result); err != nil {
			log.WithError(err).Warn("Failed to cache upload result")
		}
		if err := s.cache.InvalidateAgency(ctx, uctx.AgencyID); err != nil {
			log.WithError(err).Warn("Failed to invalidate agency summaries")
		}
	}

	if s.notifier != nil {
		s.notifier.UploadCompleted(ctx, uctx, result)
	}

	log.WithFields(map[string]any{
		"records_processed":  result.RecordsProcessed,
		"sales_created":      result.SalesCreated,
		"households_matched": result.HouseholdsMatched,
		"households_created": result.HouseholdsCreated,
		"needs_review":       result.NeedsReview,
		"row_errors":         len(result.RowErrors),
		"duration_ms":        result.CompletedAt.Sub(started).Milliseconds(),
	}).Info("Reconciliation run complete")

	return result, nil
}

// Submit starts a run detached from the caller's request lifetime and returns
// a channel that yields the result when the run finishes. Callers that only
// need fire-and-forget can discard the channel.
func (s *Service) Submit(ctx context.Context, uctx models.UploadContext, rows []models.SaleRow) <-chan *models.UploadResult {
	done := make(chan *models.UploadResult, 1)
	runCtx := context.WithoutCancel(ctx)
	go func() {
		defer close(done)
		result, err := s.Run(runCtx, uctx, rows)
		if err != nil {
			s.logger.WithContext(runCtx).WithError(err).WithFields(map[string]any{
				"agency_id": uctx.AgencyID,
				"upload_id": uctx.UploadID,
			}).Error("Background reconciliation run failed")
		}
		if result != nil {
			done <- result
		}
	}()
	return done
}

// snapshot writes the current run state to the result cache, best effort.
func (s *Service) snapshot(ctx context.Context, uctx models.UploadContext, result *models.UploadResult) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetUploadResult(ctx, uctx, result); err != nil {
		s.logger.WithContext(ctx).WithError(err).Warn("Failed to snapshot upload result")
	}
}

// fold merges one settled group outcome into the run result.
func (s *Service) fold(result *models.UploadResult, outcome groupOutcome, seenStaff, seenProducers map[string]bool) {
	if outcome.err != nil {
		errs := resolver.RowErrors(outcome.group.rows, "could not be matched to a customer record")
		result.RowErrors = append(result.RowErrors, errs...)
		result.RecordsProcessed += len(outcome.group.rows)
		metrics.UploadRowsTotal.WithLabelValues(metrics.RowOutcomeError).Add(float64(len(outcome.group.rows)))
		return
	}

	gr := outcome.result
	result.RecordsProcessed += gr.RecordsProcessed
	result.SalesCreated += gr.SalesCreated
	result.QuotesLinked += gr.QuotesLinked
	result.RowErrors = append(result.RowErrors, gr.RowErrors...)

	metrics.UploadRowsTotal.WithLabelValues(metrics.RowOutcomeSaleCreated).Add(float64(gr.SalesCreated))
	metrics.UploadRowsTotal.WithLabelValues(metrics.RowOutcomeError).Add(float64(len(gr.RowErrors)))
	metrics.MatchDecisionsTotal.WithLabelValues(string(gr.Reason)).Inc()

	if gr.Created {
		result.HouseholdsCreated++
	} else {
		result.HouseholdsMatched++
	}
	if gr.AutoMatched {
		result.AutoMatched++
	}
	if gr.NeedsAttention {
		result.NeedsAttention++
	}
	if gr.NeedsReview {
		result.NeedsReview++
	}
	if gr.Review != nil {
		result.PendingReviews = append(result.PendingReviews, *gr.Review)
	}

	for _, staffID := range gr.MatchedStaffIDs {
		if !seenStaff[staffID] {
			seenStaff[staffID] = true
			result.StaffMatched++
		}
	}
	for _, producer := range gr.UnmatchedProducers {
		if !seenProducers[producer] {
			seenProducers[producer] = true
			result.UnmatchedProducers = append(result.UnmatchedProducers, producer)
		}
	}
}

// groupRows buckets rows by household natural key, preserving first-seen
// order so runs are deterministic for a given report.
func groupRows(rows []models.SaleRow) []rowGroup {
	index := make(map[string]int)
	var groups []rowGroup

	for _, row := range rows {
		key := normalize.HouseholdKey(row.FirstName, row.LastName, row.Zip)
		if i, ok := index[key]; ok {
			groups[i].rows = append(groups[i].rows, row)
			continue
		}
		index[key] = len(groups)
		groups = append(groups, rowGroup{key: key, rows: []models.SaleRow{row}})
	}

	return groups
}
