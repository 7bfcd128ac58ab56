package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSalesReport(t *testing.T) {
	msg := &IncomingMessage{
		Value: []byte(`{
			"agency_id": "agency-1",
			"upload_id": "upload-1",
			"requested_by": "user-1",
			"rows": [
				{
					"row_index": 1,
					"first_name": "Jane",
					"last_name": "Doe",
					"zip": "30301",
					"sale_date": "2026-03-15T00:00:00Z",
					"product_type": "HO3",
					"premium_cents": 120000,
					"item_count": 1,
					"policy_number": "POL-1"
				}
			]
		}`),
	}

	require.NoError(t, msg.ParseSalesReport())
	require.NotNil(t, msg.Report)
	assert.Equal(t, "agency-1", msg.Report.AgencyID)
	assert.Equal(t, "upload-1", msg.Report.UploadID)
	require.Len(t, msg.Report.Rows, 1)
	assert.Equal(t, "Jane", msg.Report.Rows[0].FirstName)
	assert.Equal(t, int64(120000), msg.Report.Rows[0].PremiumCents)
	assert.Equal(t, "POL-1", msg.Report.Rows[0].PolicyNumber)
}

func TestParseSalesReport_MalformedPayload(t *testing.T) {
	msg := &IncomingMessage{Value: []byte(`{not json`)}

	err := msg.ParseSalesReport()
	require.Error(t, err)
	assert.Nil(t, msg.Report)
}

func TestGetAgencyID(t *testing.T) {
	// Header wins over payload.
	msg := &IncomingMessage{
		Headers: map[string]string{"agency_id": "agency-header"},
		Report:  &SalesReportMessage{AgencyID: "agency-payload"},
	}
	assert.Equal(t, "agency-header", msg.GetAgencyID())

	// Empty header falls back to the parsed payload.
	msg.Headers = map[string]string{"agency_id": ""}
	assert.Equal(t, "agency-payload", msg.GetAgencyID())

	msg.Report = nil
	assert.Equal(t, "", msg.GetAgencyID())
}

func TestUploadContext(t *testing.T) {
	report := &SalesReportMessage{
		AgencyID:        "agency-1",
		UploadID:        "upload-1",
		RequestedBy:     "user-1",
		RequestedByName: "Pat Example",
	}

	uctx := report.UploadContext()
	assert.Equal(t, "agency-1", uctx.AgencyID)
	assert.Equal(t, "upload-1", uctx.UploadID)
	assert.Equal(t, "user-1", uctx.RequestedBy)
	assert.Equal(t, "Pat Example", uctx.RequestedByName)
}
