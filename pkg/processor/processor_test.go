package processor

import (
	"context"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/kafka"
	"github.com/Ramsey-B/clover/pkg/matching"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/resolver"
	"github.com/Ramsey-B/clover/pkg/upload"
)

type stubStore struct {
	sales int
}

func (s *stubStore) GetHouseholdByIssuedPolicyNumber(ctx context.Context, agencyID, policyNumber string) (*models.Household, error) {
	return nil, nil
}

func (s *stubStore) GetHouseholdByNaturalKey(ctx context.Context, agencyID, naturalKey string) (*models.Household, error) {
	return nil, nil
}

func (s *stubStore) FindHouseholdsByLastName(ctx context.Context, agencyID, lastName string) ([]models.Household, error) {
	return nil, nil
}

func (s *stubStore) CreateHousehold(ctx context.Context, agencyID string, req models.CreateHouseholdRequest) (*models.Household, error) {
	return &models.Household{ID: uuid.NewString(), AgencyID: agencyID, NaturalKey: req.NaturalKey}, nil
}

func (s *stubStore) UpdateHouseholdOnSale(ctx context.Context, agencyID, householdID string, update models.HouseholdSaleUpdate) error {
	return nil
}

func (s *stubStore) ListStaffRoster(ctx context.Context, agencyID string) ([]models.StaffMember, error) {
	return nil, nil
}

func (s *stubStore) FindLatestQuoteByProductType(ctx context.Context, householdID, productType string) (*models.Quote, error) {
	return nil, nil
}

func (s *stubStore) CreateSale(ctx context.Context, agencyID string, req models.CreateSaleRequest) (*models.Sale, error) {
	s.sales++
	return &models.Sale{ID: uuid.NewString()}, nil
}

func (s *stubStore) FindOrCreateContact(ctx context.Context, agencyID, firstName, lastName, zip string) (string, error) {
	return uuid.NewString(), nil
}

func (s *stubStore) CreateSaleReview(ctx context.Context, review *models.PendingSaleReview) error {
	return nil
}

func newTestProcessor(store *stubStore) *Processor {
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	res := resolver.New(logger, store, matching.DefaultConfig())
	uploads := upload.NewService(logger, store, res, nil, nil, upload.DefaultConfig())
	return New(logger, uploads)
}

func TestProcessMessage_MissingReportIsSkipped(t *testing.T) {
	store := &stubStore{}
	proc := newTestProcessor(store)

	err := proc.ProcessMessage(context.Background(), &kafka.IncomingMessage{})
	assert.NoError(t, err)
	assert.Equal(t, 0, store.sales)
}

func TestProcessMessage_InvalidReportIsSkipped(t *testing.T) {
	store := &stubStore{}
	proc := newTestProcessor(store)

	// Missing upload_id and rows: permanently invalid, never retried.
	msg := &kafka.IncomingMessage{Report: &kafka.SalesReportMessage{AgencyID: "agency-1"}}

	err := proc.ProcessMessage(context.Background(), msg)
	assert.NoError(t, err)
	assert.Equal(t, 0, store.sales)
}

func TestProcessMessage_RunsReconciliation(t *testing.T) {
	store := &stubStore{}
	proc := newTestProcessor(store)

	msg := &kafka.IncomingMessage{Report: &kafka.SalesReportMessage{
		AgencyID: "agency-1",
		UploadID: "upload-1",
		Rows: []models.SaleRow{{
			RowIndex:     1,
			FirstName:    "Jane",
			LastName:     "Doe",
			Zip:          "30301",
			SaleDate:     time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
			ProductType:  "HOME",
			PremiumCents: 120000,
		}},
	}}

	err := proc.ProcessMessage(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, 1, store.sales)
}
