// Package kafka handles sales-report ingestion and pipeline event emission.
package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Ramsey-B/clover/pkg/models"
)

// SalesReportMessage is the payload published by the report parser: one
// upload's parsed rows plus its scope and attribution.
type SalesReportMessage struct {
	AgencyID        string           `json:"agency_id" validate:"required"`
	UploadID        string           `json:"upload_id" validate:"required"`
	RequestedBy     string           `json:"requested_by,omitempty"`
	RequestedByName string           `json:"requested_by_name,omitempty"`
	Rows            []models.SaleRow `json:"rows" validate:"required,min=1,dive"`
}

// UploadContext converts the message scope into the pipeline's run context.
func (m *SalesReportMessage) UploadContext() models.UploadContext {
	return models.UploadContext{
		AgencyID:        m.AgencyID,
		UploadID:        m.UploadID,
		RequestedBy:     m.RequestedBy,
		RequestedByName: m.RequestedByName,
	}
}

// IncomingMessage is a fetched Kafka message plus its parsed payload.
type IncomingMessage struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Partition int
	Offset    int64
	Timestamp time.Time
	Topic     string

	Report *SalesReportMessage
}

// ParseSalesReport decodes the message body into a SalesReportMessage.
func (m *IncomingMessage) ParseSalesReport() error {
	var report SalesReportMessage
	if err := json.Unmarshal(m.Value, &report); err != nil {
		return fmt.Errorf("failed to parse sales report message: %w", err)
	}
	m.Report = &report
	return nil
}

// GetAgencyID returns the agency scope from the header, falling back to the
// parsed payload.
func (m *IncomingMessage) GetAgencyID() string {
	if agencyID, ok := m.Headers["agency_id"]; ok && agencyID != "" {
		return agencyID
	}
	if m.Report != nil {
		return m.Report.AgencyID
	}
	return ""
}
