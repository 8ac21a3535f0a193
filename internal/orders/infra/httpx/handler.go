package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/storewell/orders/internal/orders/domain"
	"github.com/storewell/orders/internal/orders/infra/httpx/middlewares"
	"github.com/storewell/orders/internal/orders/worklog"
	"github.com/storewell/orders/internal/pkg/cache"
)

// idempotencyTTL is how long a completed response can be replayed for the
// same X-Idempotency-Key. Long enough for client retries, short enough not
// to pin Redis memory.
const idempotencyTTL = 15 * time.Minute

// OrderService is the application surface this handler drives.
type OrderService interface {
	CreateOrder(ctx context.Context, req domain.OrderRequest) (*domain.Order, error)
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
	Worklog(ctx context.Context, runID string) ([]*worklog.Entry, error)
}

// Handler exposes the order-creation workflow over HTTP.
type Handler struct {
	service OrderService
	cache   cache.Cache // nil-safe: idempotency replay skipped if nil
}

// NewHandler builds the handler. c may be nil — idempotency keys are then
// accepted but not replayed.
func NewHandler(service OrderService, c cache.Cache) *Handler {
	return &Handler{service: service, cache: c}
}

// CreateOrder decodes the request, replays a previous response when the
// idempotency key has been seen, and otherwise runs the workflow.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.CustomerID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "customer_id is required")
		return
	}

	idempKey, _ := r.Context().Value(middlewares.ContextKeyIdempotencyKey).(string)
	if body, ok := h.replay(r, idempKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Idempotent-Replay", "true")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write(body)
		return
	}

	lines := make([]domain.RequestedLine, len(req.Products))
	for i, p := range req.Products {
		lines[i] = domain.RequestedLine{ProductID: p.ID, Quantity: p.Quantity}
	}

	order, err := h.service.CreateOrder(r.Context(), domain.OrderRequest{
		CustomerID: req.CustomerID,
		Lines:      lines,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := mapOrderToResponse(order)
	h.remember(r, idempKey, resp)
	writeJSON(w, http.StatusCreated, resp)
}

// GetOrderByID reads a persisted order back.
func (h *Handler) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	order, err := h.service.GetOrder(r.Context(), orderID)
	if err != nil {
		writeError(w, http.StatusNotFound, "order_not_found", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, mapOrderToResponse(order))
}

// GetWorklog lists the stage transitions recorded for an order's workflow run.
func (h *Handler) GetWorklog(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "id")

	entries, err := h.service.Worklog(r.Context(), runID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "worklog_unavailable", err.Error())
		return
	}
	if len(entries) == 0 {
		writeError(w, http.StatusNotFound, "worklog_not_found", "")
		return
	}

	out := make([]WorklogEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = WorklogEntryResponse{
			Stage:      string(e.Stage),
			Detail:     e.Detail,
			TraceID:    e.TraceID,
			SpanID:     e.SpanID,
			RecordedAt: e.RecordedAt.Format(time.RFC3339Nano),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// replay returns the cached response body for a previously completed request
// with the same idempotency key.
func (h *Handler) replay(r *http.Request, idempKey string) ([]byte, bool) {
	if h.cache == nil || idempKey == "" {
		return nil, false
	}
	raw, err := h.cache.Get(r.Context(), h.cache.GenerateKey("idempotency", idempKey))
	if err != nil {
		slog.WarnContext(r.Context(), "idempotency cache read failed", "error", err)
		return nil, false
	}
	if raw == "" {
		return nil, false
	}
	return []byte(raw), true
}

// remember stores the successful response body under the idempotency key.
func (h *Handler) remember(r *http.Request, idempKey string, resp OrderResponse) {
	if h.cache == nil || idempKey == "" {
		return
	}
	body, err := json.Marshal(resp)
	if err != nil {
		return
	}
	key := h.cache.GenerateKey("idempotency", idempKey)
	if err := h.cache.Set(r.Context(), key, string(body), idempotencyTTL); err != nil {
		slog.WarnContext(r.Context(), "idempotency cache write failed", "error", err)
	}
}

func mapOrderToResponse(order *domain.Order) OrderResponse {
	items := make([]OrderItemResponse, len(order.Items))
	for i, it := range order.Items {
		items[i] = OrderItemResponse{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  it.Subtotal(),
		}
	}
	return OrderResponse{
		ID:         order.ID,
		CustomerID: order.CustomerID,
		Items:      items,
		Total:      order.Total(),
		CreatedAt:  order.CreatedAt.Format(time.RFC3339Nano),
	}
}

// writeDomainError maps workflow failures onto HTTP statuses. Anything that
// is not a typed validation failure is a collaborator fault, reported as 502
// so callers can tell "you asked for something impossible" from "we broke".
func writeDomainError(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		writeError(w, http.StatusBadGateway, "order_creation_failed", err.Error())
		return
	}

	status := http.StatusUnprocessableEntity
	switch verr.Kind {
	case domain.ErrCustomerNotFound, domain.ErrProductNotFound:
		status = http.StatusNotFound
	case domain.ErrInsufficientQuantity:
		status = http.StatusConflict
	}
	writeError(w, status, string(verr.Kind), verr.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: msg})
}
