// Package middlewares holds the HTTP middleware specific to the order
// service: propagating the request id and idempotency key into the request
// context where the handler and logs can reach them.
package middlewares

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// contextKey is an unexported type for context keys in this package, so they
// cannot collide with keys from other packages.
type contextKey string

const (
	HeaderXRequestId      = "X-Request-Id"
	HeaderXIdempotencyKey = "X-Idempotency-Key"

	// ContextKeyRequestID is the context key for the request id.
	ContextKeyRequestID contextKey = "request_id"
	// ContextKeyIdempotencyKey is the context key for the idempotency key.
	ContextKeyIdempotencyKey contextKey = "idempotency_key"
)

// AttachRequestMetadata copies the chi request id and the client-supplied
// idempotency key into the request context.
func AttachRequestMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := middleware.GetReqID(r.Context())
		idempotencyKey := r.Header.Get(HeaderXIdempotencyKey)

		ctx := context.WithValue(r.Context(), ContextKeyRequestID, requestID)
		ctx = context.WithValue(ctx, ContextKeyIdempotencyKey, idempotencyKey)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
