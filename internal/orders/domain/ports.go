package domain

import "context"

// The workflow depends on these ports, never on a concrete store. The
// composition root in cmd/order-service wires the sqlite implementations
// (plus the redis customer cache) to them.

// CustomerStore resolves customers by id.
type CustomerStore interface {
	// FindByID returns the customer, or (nil, nil) when no record matches.
	FindByID(ctx context.Context, id string) (*Customer, error)
}

// ProductStore resolves catalog records and applies stock write-backs.
type ProductStore interface {
	// FindAllByID returns every catalog record whose id matches any of the
	// requested lines. Duplicate ids collapse to one record; the order of the
	// returned slice is unspecified.
	FindAllByID(ctx context.Context, lines []RequestedLine) ([]Product, error)

	// UpdateQuantity applies the batch of adjustments. Implementations must
	// decrement conditionally (only while enough stock remains at write time)
	// so that two concurrent workflows cannot oversell a product; a failed
	// guard surfaces as ErrInsufficientQuantity for the offending id.
	UpdateQuantity(ctx context.Context, adjustments []InventoryAdjustment) error
}

// OrderStore persists and reads back orders.
type OrderStore interface {
	// Create persists a new order under the given id, assigning the creation
	// timestamp, and returns the stored order. The workflow mints the id
	// before validation starts so the audit trail can be keyed by it.
	Create(ctx context.Context, orderID string, customer *Customer, items []OrderLineItem) (*Order, error)

	// FindByID returns the order, or (nil, nil) when no record matches.
	FindByID(ctx context.Context, id string) (*Order, error)
}

// TxScope runs fn inside a single transaction: every store call made with the
// ctx passed to fn joins that transaction, and an error from fn rolls all of
// it back. The workflow uses it to make order creation and the inventory
// decrement succeed or fail together — an order must never exist whose stock
// write-back was lost.
type TxScope interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
}
