// Package app orchestrates the order-creation workflow over the domain ports.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/storewell/orders/internal/orders/domain"
	"github.com/storewell/orders/internal/orders/worklog"
)

// CreateOrderService runs the order-creation workflow: validate the customer,
// resolve and validate the requested products, snapshot prices into line
// items, persist the order and write back the decremented stock levels —
// the last two inside one transaction, so they succeed or fail together.
//
// One call handles one request, sequentially; concurrency across requests is
// handled by the stores (the product store decrements conditionally).
type CreateOrderService struct {
	customers domain.CustomerStore
	products  domain.ProductStore
	orders    domain.OrderStore
	tx        domain.TxScope
	log       worklog.Repository // nil-safe: stage logging skipped if nil
	tracer    trace.Tracer
}

// NewCreateOrderService wires the workflow to its collaborators.
// worklogRepo may be nil — stage transitions are then not persisted.
func NewCreateOrderService(
	customers domain.CustomerStore,
	products domain.ProductStore,
	orders domain.OrderStore,
	tx domain.TxScope,
	worklogRepo worklog.Repository,
	tracer trace.Tracer,
) *CreateOrderService {
	return &CreateOrderService{
		customers: customers,
		products:  products,
		orders:    orders,
		tx:        tx,
		log:       worklogRepo,
		tracer:    tracer,
	}
}

// CreateOrder executes the workflow for one request and returns the persisted
// order or the first validation failure. After any error no order exists and
// no stock level has changed.
func (s *CreateOrderService) CreateOrder(ctx context.Context, req domain.OrderRequest) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "orders.CreateOrder", trace.WithAttributes(
		attribute.String("order.customer_id", req.CustomerID),
		attribute.Int("order.requested_lines", len(req.Lines)),
	))
	defer span.End()

	// The order id doubles as the worklog run id, so it is minted before the
	// first stage rather than at persistence time.
	orderID := uuid.NewString()
	span.SetAttributes(attribute.String("order.id", orderID))

	run := s.enterStage(ctx, span, orderID, req.CustomerID)

	run(domain.StageValidatingCustomer)
	customer, err := s.customers.FindByID(ctx, req.CustomerID)
	if err != nil {
		return nil, s.fail(ctx, span, orderID, req.CustomerID, fmt.Errorf("look up customer %q: %w", req.CustomerID, err))
	}
	if customer == nil {
		return nil, s.fail(ctx, span, orderID, req.CustomerID,
			domain.NewValidationError(domain.ErrCustomerNotFound, req.CustomerID))
	}

	run(domain.StageValidatingProducts)
	if err := domain.ValidateRequest(req); err != nil {
		return nil, s.fail(ctx, span, orderID, req.CustomerID, err)
	}
	matched, err := s.products.FindAllByID(ctx, req.Lines)
	if err != nil {
		return nil, s.fail(ctx, span, orderID, req.CustomerID, fmt.Errorf("resolve products: %w", err))
	}
	byID := domain.IndexProducts(matched)
	if err := domain.CheckProductsExist(req.Lines, byID); err != nil {
		return nil, s.fail(ctx, span, orderID, req.CustomerID, err)
	}

	run(domain.StageValidatingStock)
	if err := domain.CheckAvailability(req.Lines, byID); err != nil {
		return nil, s.fail(ctx, span, orderID, req.CustomerID, err)
	}

	items := domain.BuildLineItems(req.Lines, byID)
	adjustments := domain.ComputeAdjustments(req.Lines, byID)

	// Order creation and inventory reconciliation share one transaction: a
	// failed stock write-back rolls the order insert back as well.
	var order *domain.Order
	err = s.tx.Run(ctx, func(txCtx context.Context) error {
		run(domain.StagePersisting)
		created, err := s.orders.Create(txCtx, orderID, customer, items)
		if err != nil {
			return fmt.Errorf("persist order: %w", err)
		}

		run(domain.StageReconcilingInventory)
		if err := s.products.UpdateQuantity(txCtx, adjustments); err != nil {
			return fmt.Errorf("update stock quantities: %w", err)
		}

		order = created
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, span, orderID, req.CustomerID, err)
	}

	run(domain.StageCompleted)
	slog.InfoContext(ctx, "order created",
		"order_id", order.ID,
		"customer_id", order.CustomerID,
		"lines", len(order.Items),
		"total", order.Total(),
	)
	return order, nil
}

// GetOrder reads a persisted order back by id.
func (s *CreateOrderService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("look up order %q: %w", orderID, err)
	}
	if order == nil {
		return nil, fmt.Errorf("order %q not found", orderID)
	}
	return order, nil
}

// Worklog returns the stage transitions recorded for a workflow run.
func (s *CreateOrderService) Worklog(ctx context.Context, runID string) ([]*worklog.Entry, error) {
	if s.log == nil {
		return nil, nil
	}
	return s.log.ListByRun(ctx, runID)
}

// enterStage returns a closure recording stage transitions for this run, both
// as span events and as worklog rows.
func (s *CreateOrderService) enterStage(ctx context.Context, span trace.Span, orderID, customerID string) func(domain.Stage) {
	return func(stage domain.Stage) {
		span.AddEvent("stage", trace.WithAttributes(attribute.String("workflow.stage", string(stage))))
		s.saveEntry(ctx, worklog.NewEntry(ctx, orderID, customerID, stage, ""))
	}
}

// fail records the terminal FAILED transition and returns err unchanged.
func (s *CreateOrderService) fail(ctx context.Context, span trace.Span, orderID, customerID string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, "order creation failed")
	slog.ErrorContext(ctx, "order creation failed", "order_id", orderID, "customer_id", customerID, "error", err)
	s.saveEntry(ctx, worklog.NewEntry(ctx, orderID, customerID, domain.StageFailed, err.Error()))
	return err
}

func (s *CreateOrderService) saveEntry(ctx context.Context, entry *worklog.Entry) {
	if s.log == nil {
		return
	}
	if err := s.log.Save(ctx, entry); err != nil {
		// The audit trail must never abort the business operation.
		slog.ErrorContext(ctx, "failed to save worklog entry", "run_id", entry.RunID, "error", err)
	}
}
