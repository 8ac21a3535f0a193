package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/storewell/orders/internal/orders/app"
	"github.com/storewell/orders/internal/orders/domain"
	infracache "github.com/storewell/orders/internal/orders/infra/cache"
	"github.com/storewell/orders/internal/orders/infra/httpx"
	"github.com/storewell/orders/internal/orders/infra/sqlite"
	worklogsqlite "github.com/storewell/orders/internal/orders/worklog/sqlite"
	"github.com/storewell/orders/internal/pkg/cache"
	"github.com/storewell/orders/internal/pkg/telemetry"
)

func main() {
	telemetry.InitLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.SetupTracer(ctx, getEnv("OTEL_SERVICE_NAME", "order-service"))
	if err != nil {
		slog.Error("failed to initialise tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	db, err := sqlite.Open(getEnv("ORDERS_DB_PATH", "./data/orders.db"))
	if err != nil {
		slog.Error("failed to open orders database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	worklogRepo, err := worklogsqlite.Open(getEnv("WORKLOG_DB_PATH", "./data/worklog.db"))
	if err != nil {
		slog.Error("failed to open worklog database", "error", err)
		os.Exit(1)
	}
	defer worklogRepo.Close()

	customerStore := sqlite.NewCustomerStore(db)
	productStore := sqlite.NewProductStore(db)
	orderStore := sqlite.NewOrderStore(db)

	redisCache := cache.NewRedisCache(getEnv("REDIS_ADDR", "redis-cache:6379"), "orders")
	cachedCustomers := infracache.NewCustomerStore(customerStore, redisCache)

	if os.Getenv("ORDERS_SEED_DEMO") == "1" {
		seedDemoData(ctx, customerStore, productStore)
	}

	service := app.NewCreateOrderService(
		cachedCustomers,
		productStore,
		orderStore,
		db,
		worklogRepo,
		otel.Tracer("order-service"),
	)

	handler := httpx.NewHandler(service, redisCache)
	server := &http.Server{
		Addr:    ":" + getEnv("PORT", "8080"),
		Handler: httpx.NewRouter(handler),
	}

	go func() {
		slog.Info("order service running", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
}

// seedDemoData loads a small catalog for local experiments. Insert errors are
// ignored on purpose: re-running against an existing database is fine.
func seedDemoData(ctx context.Context, customers *sqlite.CustomerStore, products *sqlite.ProductStore) {
	_ = customers.Insert(ctx, &domain.Customer{ID: "C1", Name: "Ada Lovelace", Email: "ada@example.com"})
	_ = products.Insert(ctx, &domain.Product{ID: "P1", Name: "Keyboard", Price: 10, Quantity: 5})
	_ = products.Insert(ctx, &domain.Product{ID: "P2", Name: "Mouse", Price: 20, Quantity: 3})
	slog.Info("demo data seeded")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
