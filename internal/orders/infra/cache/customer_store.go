// Package cache decorates stores with read-through caching. Order creation
// checks customer existence on every request, so customers are the read-heavy
// record worth keeping warm.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/storewell/orders/internal/orders/domain"
	"github.com/storewell/orders/internal/pkg/cache"
)

// customerTTL bounds how stale a cached customer can be. Existence is the
// only property the workflow checks, and customers are rarely deleted.
const customerTTL = 5 * time.Minute

// CustomerStore is a read-through caching decorator over a
// domain.CustomerStore. Cache failures degrade to the underlying store;
// they never fail an order.
type CustomerStore struct {
	next  domain.CustomerStore
	cache cache.Cache
}

func NewCustomerStore(next domain.CustomerStore, c cache.Cache) *CustomerStore {
	return &CustomerStore{next: next, cache: c}
}

// FindByID serves the customer from cache when possible, falling through to
// the underlying store and populating the cache on a hit. Misses in the
// underlying store are not cached: a customer created moments later must be
// visible to the next order.
func (s *CustomerStore) FindByID(ctx context.Context, id string) (*domain.Customer, error) {
	key := s.cache.GenerateKey("customer", id)

	if raw, err := s.cache.Get(ctx, key); err != nil {
		slog.WarnContext(ctx, "customer cache read failed", "customer_id", id, "error", err)
	} else if raw != "" {
		var c domain.Customer
		if err := json.Unmarshal([]byte(raw), &c); err == nil {
			return &c, nil
		}
		// Undecodable entry: fall through and overwrite it below.
	}

	customer, err := s.next.FindByID(ctx, id)
	if err != nil || customer == nil {
		return customer, err
	}

	if raw, err := json.Marshal(customer); err == nil {
		if err := s.cache.Set(ctx, key, string(raw), customerTTL); err != nil {
			slog.WarnContext(ctx, "customer cache write failed", "customer_id", id, "error", err)
		}
	}
	return customer, nil
}
