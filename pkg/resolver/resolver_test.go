package resolver

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/matching"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/normalize"
)

type fakeStore struct {
	mu sync.Mutex

	households   map[string]*models.Household
	byNaturalKey map[string]string
	byPolicy     map[string]string
	candidates   []models.Household
	quotes       map[string][]models.Quote
	sales        []models.Sale
	salePolicies map[string]bool
	reviews      []*models.PendingSaleReview
	updates      map[string]models.HouseholdSaleUpdate
	contacts     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		households:   make(map[string]*models.Household),
		byNaturalKey: make(map[string]string),
		byPolicy:     make(map[string]string),
		quotes:       make(map[string][]models.Quote),
		salePolicies: make(map[string]bool),
		updates:      make(map[string]models.HouseholdSaleUpdate),
	}
}

func (s *fakeStore) addHousehold(h models.Household) {
	s.households[h.ID] = &h
	s.byNaturalKey[h.NaturalKey] = h.ID
}

func (s *fakeStore) GetHouseholdByIssuedPolicyNumber(ctx context.Context, agencyID, policyNumber string) (*models.Household, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.byPolicy[policyNumber]; ok {
		return s.households[id], nil
	}
	return nil, nil
}

func (s *fakeStore) GetHouseholdByNaturalKey(ctx context.Context, agencyID, naturalKey string) (*models.Household, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.byNaturalKey[naturalKey]; ok {
		return s.households[id], nil
	}
	return nil, nil
}

func (s *fakeStore) FindHouseholdsByLastName(ctx context.Context, agencyID, lastName string) ([]models.Household, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.candidates, nil
}

func (s *fakeStore) CreateHousehold(ctx context.Context, agencyID string, req models.CreateHouseholdRequest) (*models.Household, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.byNaturalKey[req.NaturalKey]; ok {
		return s.households[id], nil
	}
	h := &models.Household{
		ID:             uuid.NewString(),
		AgencyID:       agencyID,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Zip:            req.Zip,
		NaturalKey:     req.NaturalKey,
		Status:         req.Status,
		StaffID:        req.StaffID,
		NeedsAttention: req.NeedsAttention,
		ContactID:      req.ContactID,
	}
	s.households[h.ID] = h
	s.byNaturalKey[h.NaturalKey] = h.ID
	return h, nil
}

func (s *fakeStore) UpdateHouseholdOnSale(ctx context.Context, agencyID, householdID string, update models.HouseholdSaleUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates[householdID] = update
	return nil
}

func (s *fakeStore) ListStaffRoster(ctx context.Context, agencyID string) ([]models.StaffMember, error) {
	return nil, nil
}

func (s *fakeStore) FindLatestQuoteByProductType(ctx context.Context, householdID, productType string) (*models.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, q := range s.quotes[householdID] {
		if q.ProductType == productType {
			quote := q
			return &quote, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) CreateSale(ctx context.Context, agencyID string, req models.CreateSaleRequest) (*models.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if req.PolicyNumber != nil {
		if s.salePolicies[*req.PolicyNumber] {
			return nil, ErrDuplicateSale
		}
		s.salePolicies[*req.PolicyNumber] = true
	}
	sale := models.Sale{
		ID:          uuid.NewString(),
		AgencyID:    agencyID,
		HouseholdID: req.HouseholdID,
		QuoteID:     req.QuoteID,
		SaleDate:    req.SaleDate,
		ProductType: req.ProductType,
	}
	s.sales = append(s.sales, sale)
	return &sale, nil
}

func (s *fakeStore) FindOrCreateContact(ctx context.Context, agencyID, firstName, lastName, zip string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts++
	return uuid.NewString(), nil
}

func (s *fakeStore) CreateSaleReview(ctx context.Context, review *models.PendingSaleReview) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reviews = append(s.reviews, review)
	return nil
}

func newTestResolver(store Store) *Resolver {
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	return New(logger, store, matching.DefaultConfig())
}

func testUploadContext() models.UploadContext {
	return models.UploadContext{AgencyID: "agency-1", UploadID: "upload-1"}
}

func testRow(first, last, zip, product, policy string) models.SaleRow {
	return models.SaleRow{
		RowIndex:     1,
		FirstName:    first,
		LastName:     last,
		Zip:          zip,
		SaleDate:     time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		ProductType:  product,
		PremiumCents: 120000,
		ItemCount:    1,
		PolicyNumber: policy,
	}
}

func TestResolveGroup_PolicyNumberWinsOverEverything(t *testing.T) {
	store := newFakeStore()
	existing := models.Household{
		ID:         "hh-1",
		AgencyID:   "agency-1",
		FirstName:  "Maria",
		LastName:   "Lopez",
		Zip:        "90210",
		NaturalKey: "maria-lopez-90210",
	}
	store.addHousehold(existing)
	store.byPolicy["POL-42"] = "hh-1"

	// Different name and zip: the policy number still binds the group.
	row := testRow("M", "Lopes", "10001", "AUTO", "POL-42")
	key := normalize.HouseholdKey(row.FirstName, row.LastName, row.Zip)

	res := newTestResolver(store)
	result, err := res.ResolveGroup(context.Background(), testUploadContext(), key, []models.SaleRow{row}, nil)
	require.NoError(t, err)

	assert.Equal(t, "hh-1", result.HouseholdID)
	assert.True(t, result.AutoMatched)
	assert.False(t, result.Created)
	assert.Equal(t, models.MatchReasonPolicyNumber, result.Reason)
	assert.Equal(t, 1, result.SalesCreated)

	update, ok := store.updates["hh-1"]
	require.True(t, ok)
	assert.Equal(t, models.HouseholdStatusSold, update.Status)
}

func TestResolveGroup_NaturalKeyMatch(t *testing.T) {
	store := newFakeStore()
	store.addHousehold(models.Household{
		ID:         "hh-2",
		AgencyID:   "agency-1",
		FirstName:  "John",
		LastName:   "Smith",
		Zip:        "90210",
		NaturalKey: "john-smith-90210",
	})

	row := testRow("John", "Smith", "90210-1234", "AUTO", "")
	key := normalize.HouseholdKey(row.FirstName, row.LastName, row.Zip)

	res := newTestResolver(store)
	result, err := res.ResolveGroup(context.Background(), testUploadContext(), key, []models.SaleRow{row}, nil)
	require.NoError(t, err)

	assert.Equal(t, "hh-2", result.HouseholdID)
	assert.True(t, result.AutoMatched)
	assert.Equal(t, models.MatchReasonNaturalKey, result.Reason)
	assert.Empty(t, store.reviews)
}

func TestResolveGroup_NoCandidatesCreatesHousehold(t *testing.T) {
	store := newFakeStore()

	row := testRow("Jane", "Doe", "30301", "HOME", "")
	key := normalize.HouseholdKey(row.FirstName, row.LastName, row.Zip)

	res := newTestResolver(store)
	result, err := res.ResolveGroup(context.Background(), testUploadContext(), key, []models.SaleRow{row}, nil)
	require.NoError(t, err)

	assert.True(t, result.Created)
	assert.False(t, result.AutoMatched)
	assert.True(t, result.NeedsAttention)
	assert.Equal(t, models.MatchReasonNoCandidates, result.Reason)
	assert.Equal(t, 1, result.SalesCreated)
	assert.Equal(t, 1, store.contacts)

	created := store.households[result.HouseholdID]
	require.NotNil(t, created)
	assert.True(t, created.NeedsAttention)
	assert.Equal(t, models.HouseholdStatusSold, created.Status)
}

func TestResolveGroup_AmbiguousCandidatesQueueReview(t *testing.T) {
	store := newFakeStore()
	saleDate := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	// Candidate A scores 75 (product + premium + quote date), candidate B
	// scores 65 (product + premium, quote after the sale): the 10-point gap
	// is not decisive.
	store.candidates = []models.Household{
		{
			ID: "cand-a", FirstName: "Jane", LastName: "Doe", Zip: "30301",
			Quotes: []models.Quote{{
				ID: "q-a", HouseholdID: "cand-a", ProductType: "HOME",
				PremiumCents: 120000, QuoteDate: saleDate.AddDate(0, -1, 0),
			}},
		},
		{
			ID: "cand-b", FirstName: "Jane", LastName: "Doe", Zip: "30302",
			Quotes: []models.Quote{{
				ID: "q-b", HouseholdID: "cand-b", ProductType: "HOME",
				PremiumCents: 120000, QuoteDate: saleDate.AddDate(0, 1, 0),
			}},
		},
	}

	row := testRow("Jane", "Doe", "30303", "HOME", "")
	key := normalize.HouseholdKey(row.FirstName, row.LastName, row.Zip)

	res := newTestResolver(store)
	result, err := res.ResolveGroup(context.Background(), testUploadContext(), key, []models.SaleRow{row}, nil)
	require.NoError(t, err)

	assert.True(t, result.NeedsReview)
	assert.True(t, result.Created)
	assert.Equal(t, models.MatchReasonAmbiguous, result.Reason)
	require.NotNil(t, result.Review)
	assert.Len(t, result.Review.Candidates, 2)
	assert.Equal(t, "cand-a", result.Review.Candidates[0].HouseholdID)
	assert.Equal(t, 75, result.Review.Candidates[0].Score)
	assert.Equal(t, result.HouseholdID, result.Review.PlaceholderHouseholdID)
	require.Len(t, store.reviews, 1)
	assert.Equal(t, models.SaleReviewStatusPending, store.reviews[0].Status)

	// The sale still lands on the placeholder household.
	assert.Equal(t, 1, result.SalesCreated)
}

func TestResolveGroup_ClearScoreLeadAutoMatches(t *testing.T) {
	store := newFakeStore()
	saleDate := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	// Candidate A scores 75, candidate B scores 50 (product + quote date,
	// premium out of tolerance): a 25-point lead auto-matches.
	store.candidates = []models.Household{
		{
			ID: "cand-a", FirstName: "Jane", LastName: "Doe", Zip: "30301",
			Quotes: []models.Quote{{
				ID: "q-a", HouseholdID: "cand-a", ProductType: "HOME",
				PremiumCents: 120000, QuoteDate: saleDate.AddDate(0, -1, 0),
			}},
		},
		{
			ID: "cand-b", FirstName: "Jane", LastName: "Doe", Zip: "30302",
			Quotes: []models.Quote{{
				ID: "q-b", HouseholdID: "cand-b", ProductType: "HOME",
				PremiumCents: 500000, QuoteDate: saleDate.AddDate(0, -2, 0),
			}},
		},
	}

	row := testRow("Jane", "Doe", "30303", "HOME", "")
	key := normalize.HouseholdKey(row.FirstName, row.LastName, row.Zip)

	res := newTestResolver(store)
	result, err := res.ResolveGroup(context.Background(), testUploadContext(), key, []models.SaleRow{row}, nil)
	require.NoError(t, err)

	assert.True(t, result.AutoMatched)
	assert.False(t, result.NeedsReview)
	assert.Equal(t, models.MatchReasonScoreLead, result.Reason)
	assert.Equal(t, "cand-a", result.HouseholdID)
	assert.Empty(t, store.reviews)
}

func TestResolveGroup_DuplicateSaleIsSkippedNotFatal(t *testing.T) {
	store := newFakeStore()
	store.salePolicies["POL-99"] = true

	row := testRow("Jane", "Doe", "30301", "HOME", "POL-99")
	key := normalize.HouseholdKey(row.FirstName, row.LastName, row.Zip)

	res := newTestResolver(store)
	result, err := res.ResolveGroup(context.Background(), testUploadContext(), key, []models.SaleRow{row}, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, result.SalesCreated)
	require.Len(t, result.RowErrors, 1)
	assert.Contains(t, result.RowErrors[0], "POL-99")
	assert.Contains(t, result.RowErrors[0], "duplicate sale")
}

func TestResolveGroup_QuoteLinkedToSale(t *testing.T) {
	store := newFakeStore()
	store.addHousehold(models.Household{
		ID:         "hh-3",
		AgencyID:   "agency-1",
		FirstName:  "John",
		LastName:   "Smith",
		Zip:        "90210",
		NaturalKey: "john-smith-90210",
	})
	store.quotes["hh-3"] = []models.Quote{{
		ID: "q-1", HouseholdID: "hh-3", ProductType: "AUTO",
		PremiumCents: 118000, QuoteDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}}

	row := testRow("John", "Smith", "90210", "AUTO", "")
	key := normalize.HouseholdKey(row.FirstName, row.LastName, row.Zip)

	res := newTestResolver(store)
	result, err := res.ResolveGroup(context.Background(), testUploadContext(), key, []models.SaleRow{row}, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, result.SalesCreated)
	assert.Equal(t, 1, result.QuotesLinked)
	require.Len(t, store.sales, 1)
	require.NotNil(t, store.sales[0].QuoteID)
	assert.Equal(t, "q-1", *store.sales[0].QuoteID)
}

func TestResolveGroup_UnmatchedProducerIsReported(t *testing.T) {
	store := newFakeStore()

	row := testRow("Jane", "Doe", "30301", "HOME", "")
	row.SubProducerName = "Unknown Producer"
	key := normalize.HouseholdKey(row.FirstName, row.LastName, row.Zip)

	roster := []models.StaffMember{{ID: "staff-1", Name: "Robert Jones", Code: "RJ1"}}

	res := newTestResolver(store)
	result, err := res.ResolveGroup(context.Background(), testUploadContext(), key, []models.SaleRow{row}, roster)
	require.NoError(t, err)

	assert.Empty(t, result.MatchedStaffIDs)
	assert.Equal(t, []string{"Unknown Producer"}, result.UnmatchedProducers)
}
