// Package processor handles sales-report messages fetched from Kafka and runs
// them through the upload pipeline.
package processor

import (
	"context"

	"github.com/Gobusters/ectologger"
	"github.com/go-playground/validator/v10"

	"github.com/Ramsey-B/clover/pkg/kafka"
	"github.com/Ramsey-B/clover/pkg/tracing"
	"github.com/Ramsey-B/clover/pkg/upload"
)

// Processor runs reconciliation for incoming sales-report messages.
type Processor struct {
	logger   ectologger.Logger
	uploads  *upload.Service
	validate *validator.Validate
}

// New creates a new processor
func New(logger ectologger.Logger, uploads *upload.Service) *Processor {
	return &Processor{
		logger:   logger,
		uploads:  uploads,
		validate: validator.New(),
	}
}

// ProcessMessage handles one sales-report message. A returned error leaves
// the message uncommitted so it is retried; invalid payloads are skipped.
func (p *Processor) ProcessMessage(ctx context.Context, msg *kafka.IncomingMessage) error {
	ctx, span := tracing.StartSpan(ctx, "processor.Processor.ProcessMessage")
	defer span.End()

	report := msg.Report
	log := p.logger.WithContext(ctx).WithFields(map[string]any{
		"agency_id": msg.GetAgencyID(),
		"topic":     msg.Topic,
		"offset":    msg.Offset,
	})

	if report == nil {
		log.Error("Message has no sales report payload")
		return nil
	}

	if err := p.validate.Struct(report); err != nil {
		// Validation failures are permanent; retrying cannot fix the payload.
		log.WithError(err).Error("Sales report message failed validation, skipping")
		return nil
	}

	result, err := p.uploads.Run(ctx, report.UploadContext(), report.Rows)
	if err != nil {
		return err
	}

	log.WithFields(map[string]any{
		"upload_id":         report.UploadID,
		"records_processed": result.RecordsProcessed,
		"sales_created":     result.SalesCreated,
		"row_errors":        len(result.RowErrors),
	}).Info("Processed sales report message")

	return nil
}
