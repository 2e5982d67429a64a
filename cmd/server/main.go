/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the North Arena booking server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse flags and environment (config package)
  2. Initialize SQLite store, seed default slot prices if empty
  3. Wire the reconciliation service and journal
  4. Configure HTTP router
  5. Start server with graceful shutdown

CONFIGURATION:
  -a / RUN_ADDRESS        listen address (default :8080)
  -d / DATABASE_PATH      SQLite database path (default ./data/arena.db)
                          Use ":memory:" for in-memory database
  -seed / SEED_PRICES     seed the default rate card when the pricing
                          table is empty (default true)
  -origins / ALLOWED_ORIGINS  comma-separated CORS origins

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/jmahadi/north-arena-webapp/api"
	"github.com/jmahadi/north-arena-webapp/config"
	"github.com/jmahadi/north-arena-webapp/engine"
	"github.com/jmahadi/north-arena-webapp/journal"
	"github.com/jmahadi/north-arena-webapp/store/sqlite"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		logger.Fatal("failed to parse configuration", zap.Error(err))
	}

	store, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer store.Close()

	catalog := engine.DefaultSlotCatalog()

	if cfg.SeedPrices {
		seeded, err := store.HasPriceRules(context.Background())
		if err != nil {
			logger.Fatal("failed to check pricing table", zap.Error(err))
		}
		if !seeded {
			if err := store.SeedDefaultPrices(context.Background(), catalog); err != nil {
				logger.Fatal("failed to seed default prices", zap.Error(err))
			}
			logger.Info("seeded default slot prices")
		}
	}

	svc := engine.NewService(store, store, store, catalog, logger)
	jrnl := journal.New(store, store)
	handler := api.NewHandler(store, svc, jrnl, catalog, logger)
	router := api.NewRouter(handler, cfg.AllowedOrigins)

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
