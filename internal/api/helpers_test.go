package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"medicine-inventory-service/internal/domain"
	"medicine-inventory-service/internal/logger"
	"medicine-inventory-service/internal/store"
)

// testNow pins "today" to 2024-06-15 for every handler under test.
var testNow = time.Date(2024, time.June, 15, 9, 0, 0, 0, time.UTC)

// MockCategoryStorer is a mock implementation of store.CategoryStorer
type MockCategoryStorer struct {
	mock.Mock
}

func (m *MockCategoryStorer) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *MockCategoryStorer) GetCategoryByID(ctx context.Context, id string) (*domain.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *MockCategoryStorer) ListCategories(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	var categories []domain.Category
	if arg0 := args.Get(0); arg0 != nil {
		categories = arg0.([]domain.Category)
	}
	return categories, args.Error(1)
}

func (m *MockCategoryStorer) DeleteCategory(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockMedicineStorer is a mock implementation of store.MedicineStorer
type MockMedicineStorer struct {
	mock.Mock
}

func (m *MockMedicineStorer) CreateMedicine(ctx context.Context, medicine *domain.Medicine) (*domain.Medicine, error) {
	args := m.Called(ctx, medicine)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Medicine), args.Error(1)
}

func (m *MockMedicineStorer) GetMedicineByID(ctx context.Context, id string) (*domain.Medicine, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Medicine), args.Error(1)
}

func (m *MockMedicineStorer) ListMedicines(ctx context.Context) ([]domain.Medicine, error) {
	args := m.Called(ctx)
	var medicines []domain.Medicine
	if arg0 := args.Get(0); arg0 != nil {
		medicines = arg0.([]domain.Medicine)
	}
	return medicines, args.Error(1)
}

func (m *MockMedicineStorer) UpdateMedicine(ctx context.Context, id string, update domain.MedicineUpdate) (*domain.Medicine, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Medicine), args.Error(1)
}

func (m *MockMedicineStorer) DeleteMedicine(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newTestHTTPHandler(cs store.CategoryStorer, ms store.MedicineStorer) *HTTPHandler {
	h := NewHTTPHandler(cs, ms, logger.Discard(), DefaultLimits())
	h.now = func() time.Time { return testNow }
	return h
}

// Helper for setting up tests with a chi router and handler
func setupTestChiServer(t *testing.T, h *HTTPHandler) *httptest.Server {
	t.Helper()
	router := chi.NewRouter()
	h.RegisterRoutes(router)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

// newSeededMemoryStore holds the antibiotics and painkillers categories and, when
// withMedicines is set, medicine A (expired, stock 5) and B (valid, stock 50).
func newSeededMemoryStore(t *testing.T, withMedicines bool) *store.MemoryStore {
	t.Helper()
	ctx := context.Background()
	s := store.NewMemoryStore()
	for _, name := range []string{"antibiotics", "painkillers"} {
		_, err := s.CreateCategory(ctx, &domain.Category{Name: name})
		require.NoError(t, err)
	}
	if !withMedicines {
		return s
	}
	for _, m := range []domain.Medicine{
		{Name: "A", Category: "antibiotics", Dosage: "250mg", Manufacturer: "X", ExpiryDate: domain.NewDate(2020, time.January, 1), StockQuantity: 5},
		{Name: "B", Category: "painkillers", Dosage: "500mg", Manufacturer: "Y", ExpiryDate: domain.NewDate(2030, time.January, 1), StockQuantity: 50},
	} {
		m := m
		_, err := s.CreateMedicine(ctx, &m)
		require.NoError(t, err)
	}
	return s
}

func doJSON(t *testing.T, method, url string, body interface{}) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { res.Body.Close() })
	return res
}

func decodeBody(t *testing.T, res *http.Response, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(res.Body).Decode(v))
}

// Helper function to get a pointer (useful for optional fields in domain structs)
func PtrTo[T any](v T) *T {
	return &v
}
