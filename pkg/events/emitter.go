// Package events publishes reconciliation lifecycle events for downstream
// consumers (dashboards, notifications).
package events

import (
	"context"
	"encoding/json"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/kafka"
	"github.com/Ramsey-B/clover/pkg/models"
)

// Event types emitted by the pipeline.
const (
	EventUploadStarted    = "upload.started"
	EventUploadProgress   = "upload.progress"
	EventUploadCompleted  = "upload.completed"
	EventUploadFailed     = "upload.failed"
	EventSaleReviewQueued = "sale.review_queued"
)

// Emitter publishes upload lifecycle events. Emission is best effort: a
// publish failure is logged and never fails the run.
type Emitter struct {
	producer *kafka.Producer
	logger   ectologger.Logger
}

// NewEmitter creates a new event emitter
func NewEmitter(producer *kafka.Producer, logger ectologger.Logger) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   logger,
	}
}

func (e *Emitter) UploadStarted(ctx context.Context, uctx models.UploadContext, totalRows int) {
	e.publish(ctx, &kafka.UploadEvent{
		EventType: EventUploadStarted,
		AgencyID:  uctx.AgencyID,
		UploadID:  uctx.UploadID,
		TotalRows: totalRows,
	})
}

func (e *Emitter) UploadProgress(ctx context.Context, uctx models.UploadContext, processedGroups, totalGroups int) {
	e.publish(ctx, &kafka.UploadEvent{
		EventType:       EventUploadProgress,
		AgencyID:        uctx.AgencyID,
		UploadID:        uctx.UploadID,
		ProcessedGroups: processedGroups,
		TotalGroups:     totalGroups,
	})
}

func (e *Emitter) UploadCompleted(ctx context.Context, uctx models.UploadContext, result *models.UploadResult) {
	payload, err := json.Marshal(result)
	if err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to marshal upload result")
		return
	}
	status := "success"
	if result.Failed() {
		status = "partial_failure"
	}
	e.publish(ctx, &kafka.UploadEvent{
		EventType: EventUploadCompleted,
		AgencyID:  uctx.AgencyID,
		UploadID:  uctx.UploadID,
		Status:    status,
		Result:    payload,
	})
}

func (e *Emitter) SaleReviewQueued(ctx context.Context, uctx models.UploadContext, review *models.PendingSaleReview) {
	payload, err := json.Marshal(review)
	if err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to marshal sale review")
		return
	}
	e.publish(ctx, &kafka.UploadEvent{
		EventType: EventSaleReviewQueued,
		AgencyID:  uctx.AgencyID,
		UploadID:  uctx.UploadID,
		Reason:    review.Reason,
		Result:    payload,
	})
}

func (e *Emitter) UploadFailed(ctx context.Context, uctx models.UploadContext, reason string) {
	e.publish(ctx, &kafka.UploadEvent{
		EventType: EventUploadFailed,
		AgencyID:  uctx.AgencyID,
		UploadID:  uctx.UploadID,
		Reason:    reason,
	})
}

func (e *Emitter) publish(ctx context.Context, event *kafka.UploadEvent) {
	if err := e.producer.PublishUploadEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"event_type": event.EventType,
			"upload_id":  event.UploadID,
		}).Warn("Failed to emit upload event")
	}
}
