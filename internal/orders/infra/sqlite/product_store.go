package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/storewell/orders/internal/orders/domain"
)

// ProductStore is the SQLite implementation of domain.ProductStore.
type ProductStore struct {
	db *DB
}

func NewProductStore(db *DB) *ProductStore {
	return &ProductStore{db: db}
}

// FindAllByID returns every catalog record matching a requested id. Duplicate
// ids in the request collapse to one lookup; missing ids simply produce no
// row — the workflow decides what that means.
func (s *ProductStore) FindAllByID(ctx context.Context, lines []domain.RequestedLine) ([]domain.Product, error) {
	if len(lines) == 0 {
		return nil, nil
	}

	seen := make(map[string]struct{}, len(lines))
	ids := make([]any, 0, len(lines))
	for _, line := range lines {
		if _, dup := seen[line.ProductID]; dup {
			continue
		}
		seen[line.ProductID] = struct{}{}
		ids = append(ids, line.ProductID)
	}

	q := fmt.Sprintf(
		`SELECT id, name, price, quantity FROM products WHERE id IN (%s)`,
		strings.TrimSuffix(strings.Repeat("?,", len(ids)), ","),
	)

	rows, err := s.db.querier(ctx).QueryContext(ctx, q, ids...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: find products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Quantity); err != nil {
			return nil, fmt.Errorf("sqlite: scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: find products: %w", err)
	}
	return products, nil
}

// UpdateQuantity applies the batch of stock write-backs as guarded decrements:
// each row is decremented only while enough stock remains at write time, so a
// concurrent workflow that consumed the same units in the meantime makes this
// call fail instead of overselling. Run it inside TxScope.Run so a failed
// guard rolls back the whole batch together with the order insert.
func (s *ProductStore) UpdateQuantity(ctx context.Context, adjustments []domain.InventoryAdjustment) error {
	const q = `
		UPDATE products
		SET    quantity = quantity - ?, updated_at = ?
		WHERE  id = ? AND quantity >= ?`

	now := formatTime(time.Now())
	for _, adj := range adjustments {
		res, err := s.db.querier(ctx).ExecContext(ctx, q, adj.Requested, now, adj.ProductID, adj.Requested)
		if err != nil {
			return fmt.Errorf("sqlite: decrement stock for %q: %w", adj.ProductID, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("sqlite: decrement stock for %q: %w", adj.ProductID, err)
		}
		if affected == 0 {
			// Stock moved between validation and write; re-validation failed.
			return domain.NewValidationError(domain.ErrInsufficientQuantity, adj.ProductID)
		}
	}
	return nil
}

// Insert adds a catalog record. Used by the demo seed and by tests; catalog
// management proper lives outside this service.
func (s *ProductStore) Insert(ctx context.Context, p *domain.Product) error {
	const q = `INSERT INTO products (id, name, price, quantity, updated_at) VALUES (?, ?, ?, ?, ?)`

	if _, err := s.db.querier(ctx).ExecContext(ctx, q, p.ID, p.Name, p.Price, p.Quantity, formatTime(time.Now())); err != nil {
		return fmt.Errorf("sqlite: insert product %q: %w", p.ID, err)
	}
	return nil
}
