package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/storewell/orders/internal/orders/domain"
)

// CustomerStore is the SQLite implementation of domain.CustomerStore.
type CustomerStore struct {
	db *DB
}

func NewCustomerStore(db *DB) *CustomerStore {
	return &CustomerStore{db: db}
}

// FindByID returns the customer, or (nil, nil) when no record matches.
func (s *CustomerStore) FindByID(ctx context.Context, id string) (*domain.Customer, error) {
	const q = `SELECT id, name, email FROM customers WHERE id = ?`

	var c domain.Customer
	err := s.db.querier(ctx).QueryRowContext(ctx, q, id).Scan(&c.ID, &c.Name, &c.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: find customer %q: %w", id, err)
	}
	return &c, nil
}

// Insert adds a customer record. Used by the demo seed and by tests; customer
// management proper lives outside this service.
func (s *CustomerStore) Insert(ctx context.Context, c *domain.Customer) error {
	const q = `INSERT INTO customers (id, name, email, created_at) VALUES (?, ?, ?, ?)`

	if _, err := s.db.querier(ctx).ExecContext(ctx, q, c.ID, c.Name, c.Email, formatTime(time.Now())); err != nil {
		return fmt.Errorf("sqlite: insert customer %q: %w", c.ID, err)
	}
	return nil
}
