package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storewell/orders/internal/orders/domain"
	"github.com/storewell/orders/internal/orders/infra/httpx/middlewares"
	"github.com/storewell/orders/internal/orders/worklog"
)

// fakeService scripts the application layer.
type fakeService struct {
	order   *domain.Order
	err     error
	entries []*worklog.Entry
	calls   int
}

func (s *fakeService) CreateOrder(_ context.Context, _ domain.OrderRequest) (*domain.Order, error) {
	s.calls++
	return s.order, s.err
}

func (s *fakeService) GetOrder(_ context.Context, _ string) (*domain.Order, error) {
	if s.order == nil {
		return nil, domain.NewValidationError(domain.ErrCustomerNotFound, "x")
	}
	return s.order, s.err
}

func (s *fakeService) Worklog(_ context.Context, _ string) ([]*worklog.Entry, error) {
	return s.entries, s.err
}

// memoryCache is an in-process cache.Cache for tests.
type memoryCache struct {
	values map[string]string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: make(map[string]string)}
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.values[key] = value.(string)
	return nil
}

func (c *memoryCache) Get(_ context.Context, key string) (string, error) {
	return c.values[key], nil
}

func (c *memoryCache) GenerateKey(operation, key string) string {
	return "test:" + operation + ":" + key
}

func sampleOrder() *domain.Order {
	return &domain.Order{
		ID:         "order-1",
		CustomerID: "C1",
		Items: []domain.OrderLineItem{
			{ProductID: "P1", Quantity: 2, UnitPrice: 10},
			{ProductID: "P2", Quantity: 1, UnitPrice: 20},
		},
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func postOrder(t *testing.T, router http.Handler, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

const validBody = `{"customer_id":"C1","products":[{"id":"P1","quantity":2},{"id":"P2","quantity":1}]}`

func TestCreateOrder_Success(t *testing.T) {
	svc := &fakeService{order: sampleOrder()}
	router := NewRouter(NewHandler(svc, nil))

	rec := postOrder(t, router, validBody, nil)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "order-1", resp.ID)
	assert.Equal(t, "C1", resp.CustomerID)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, OrderItemResponse{ProductID: "P1", Quantity: 2, UnitPrice: 10, Subtotal: 20}, resp.Items[0])
	assert.Equal(t, 40.0, resp.Total)
}

func TestCreateOrder_MalformedBody(t *testing.T) {
	router := NewRouter(NewHandler(&fakeService{}, nil))

	rec := postOrder(t, router, `{"customer_id":`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateOrder_MissingCustomerID(t *testing.T) {
	router := NewRouter(NewHandler(&fakeService{}, nil))

	rec := postOrder(t, router, `{"products":[{"id":"P1","quantity":1}]}`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateOrder_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "customer not found",
			err:        domain.NewValidationError(domain.ErrCustomerNotFound, "C9"),
			wantStatus: http.StatusNotFound,
			wantCode:   "CUSTOMER_NOT_FOUND",
		},
		{
			name:       "product not found",
			err:        domain.NewValidationError(domain.ErrProductNotFound, "PX"),
			wantStatus: http.StatusNotFound,
			wantCode:   "PRODUCT_NOT_FOUND",
		},
		{
			name:       "insufficient quantity",
			err:        domain.NewValidationError(domain.ErrInsufficientQuantity, "P1"),
			wantStatus: http.StatusConflict,
			wantCode:   "INSUFFICIENT_QUANTITY",
		},
		{
			name:       "no products",
			err:        domain.NewValidationError(domain.ErrNoProductsFound, ""),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "NO_PRODUCTS_FOUND",
		},
		{
			name:       "duplicate product",
			err:        domain.NewValidationError(domain.ErrDuplicateProduct, "P1"),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "DUPLICATE_PRODUCT",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			router := NewRouter(NewHandler(&fakeService{err: tc.err}, nil))

			rec := postOrder(t, router, validBody, nil)

			assert.Equal(t, tc.wantStatus, rec.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tc.wantCode, resp.Error)
			assert.Equal(t, tc.err.Error(), resp.Message)
		})
	}
}

func TestCreateOrder_IdempotentReplay(t *testing.T) {
	svc := &fakeService{order: sampleOrder()}
	router := NewRouter(NewHandler(svc, newMemoryCache()))
	headers := map[string]string{middlewares.HeaderXIdempotencyKey: "key-1"}

	first := postOrder(t, router, validBody, headers)
	require.Equal(t, http.StatusCreated, first.Code)
	assert.Empty(t, first.Header().Get("Idempotent-Replay"))

	second := postOrder(t, router, validBody, headers)
	require.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replay"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, svc.calls, "the workflow must run only once per idempotency key")
}

func TestGetOrderByID(t *testing.T) {
	svc := &fakeService{order: sampleOrder()}
	router := NewRouter(NewHandler(svc, nil))

	req := httptest.NewRequest(http.MethodGet, "/orders/order-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "order-1", resp.ID)
}

func TestGetOrderByID_NotFound(t *testing.T) {
	router := NewRouter(NewHandler(&fakeService{}, nil))

	req := httptest.NewRequest(http.MethodGet, "/orders/missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetWorklog(t *testing.T) {
	svc := &fakeService{entries: []*worklog.Entry{
		{RunID: "order-1", CustomerID: "C1", Stage: domain.StageValidatingCustomer, RecordedAt: time.Now()},
		{RunID: "order-1", CustomerID: "C1", Stage: domain.StageFailed, Detail: "boom", RecordedAt: time.Now()},
	}}
	router := NewRouter(NewHandler(svc, nil))

	req := httptest.NewRequest(http.MethodGet, "/orders/order-1/worklog", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []WorklogEntryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "VALIDATING_CUSTOMER", resp[0].Stage)
	assert.Equal(t, "boom", resp[1].Detail)
}

func TestGetWorklog_UnknownRun(t *testing.T) {
	router := NewRouter(NewHandler(&fakeService{}, nil))

	req := httptest.NewRequest(http.MethodGet, "/orders/missing/worklog", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
