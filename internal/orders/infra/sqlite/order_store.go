package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/storewell/orders/internal/orders/domain"
)

// OrderStore is the SQLite implementation of domain.OrderStore. Orders are
// append-only: there is no update or delete statement in this file on purpose.
type OrderStore struct {
	db *DB
}

func NewOrderStore(db *DB) *OrderStore {
	return &OrderStore{db: db}
}

// Create persists the order header and its line items, assigning the creation
// timestamp. Line rows are numbered so reads preserve request order.
func (s *OrderStore) Create(ctx context.Context, orderID string, customer *domain.Customer, items []domain.OrderLineItem) (*domain.Order, error) {
	createdAt := time.Now().UTC()
	q := s.db.querier(ctx)

	const insertOrder = `INSERT INTO orders (id, customer_id, created_at) VALUES (?, ?, ?)`
	if _, err := q.ExecContext(ctx, insertOrder, orderID, customer.ID, formatTime(createdAt)); err != nil {
		return nil, fmt.Errorf("sqlite: insert order %q: %w", orderID, err)
	}

	const insertLine = `
		INSERT INTO order_lines (order_id, line_no, product_id, quantity, unit_price)
		VALUES (?, ?, ?, ?, ?)`
	for i, item := range items {
		if _, err := q.ExecContext(ctx, insertLine, orderID, i, item.ProductID, item.Quantity, item.UnitPrice); err != nil {
			return nil, fmt.Errorf("sqlite: insert line %d of order %q: %w", i, orderID, err)
		}
	}

	return &domain.Order{
		ID:         orderID,
		CustomerID: customer.ID,
		Items:      items,
		CreatedAt:  createdAt,
	}, nil
}

// FindByID returns the order with its lines in original request order, or
// (nil, nil) when no record matches.
func (s *OrderStore) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	q := s.db.querier(ctx)

	const selectOrder = `SELECT id, customer_id, created_at FROM orders WHERE id = ?`

	var order domain.Order
	var createdAt string
	err := q.QueryRowContext(ctx, selectOrder, id).Scan(&order.ID, &order.CustomerID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: find order %q: %w", id, err)
	}
	if order.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}

	const selectLines = `
		SELECT product_id, quantity, unit_price
		FROM   order_lines
		WHERE  order_id = ?
		ORDER  BY line_no`

	rows, err := q.QueryContext(ctx, selectLines, id)
	if err != nil {
		return nil, fmt.Errorf("sqlite: find lines of order %q: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderLineItem
		if err := rows.Scan(&item.ProductID, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, fmt.Errorf("sqlite: scan line of order %q: %w", id, err)
		}
		order.Items = append(order.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: find lines of order %q: %w", id, err)
	}

	return &order, nil
}
