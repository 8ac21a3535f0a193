// Package domain holds the entities and pure business rules of the
// order-creation workflow. It has no dependencies on storage, transport or
// telemetry; everything here is a value and a function over values.
package domain

import "time"

// Customer is a catalog customer. Order creation only ever checks that the
// record exists; the remaining attributes travel along for persistence.
type Customer struct {
	ID    string
	Name  string
	Email string
}

// Product is a stock-tracked catalog record. Price and Quantity are the values
// observed at lookup time; the workflow never re-reads them.
type Product struct {
	ID       string
	Name     string
	Price    float64
	Quantity int
}

// RequestedLine is one (product, quantity) pair of an incoming order request.
type RequestedLine struct {
	ProductID string
	Quantity  int
}

// OrderRequest is the request-scoped input to the workflow. It is never
// persisted as-is.
type OrderRequest struct {
	CustomerID string
	Lines      []RequestedLine
}

// OrderLineItem is one line of a persisted order. UnitPrice is a snapshot of
// the product price taken at validation time and is immutable afterwards:
// later catalog price changes never affect existing orders.
type OrderLineItem struct {
	ProductID string
	Quantity  int
	UnitPrice float64
}

// Subtotal is the line total at the snapshot price.
func (i OrderLineItem) Subtotal() float64 {
	return float64(i.Quantity) * i.UnitPrice
}

// Order is the persisted result of a successful workflow run. ID and
// CreatedAt are assigned by the order store. Orders are append-only: there is
// no update or delete path in this module.
type Order struct {
	ID         string
	CustomerID string
	Items      []OrderLineItem
	CreatedAt  time.Time
}

// Total is the sum of all line subtotals.
func (o *Order) Total() float64 {
	var total float64
	for _, item := range o.Items {
		total += item.Subtotal()
	}
	return total
}

// InventoryAdjustment is the post-order stock write-back for one product.
// Requested is the decrement; Quantity is the expected resulting stock level
// (observed quantity minus Requested, never negative once validation passed).
// The store applies the decrement conditionally and re-checks availability at
// write time, which is why the delta is carried alongside the new value.
type InventoryAdjustment struct {
	ProductID string
	Requested int
	Quantity  int
}
