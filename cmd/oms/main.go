package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KretovDmitry/order-management-service/internal/application/services"
	"github.com/KretovDmitry/order-management-service/internal/config"
	"github.com/KretovDmitry/order-management-service/internal/domain/repositories"
	"github.com/KretovDmitry/order-management-service/internal/infrastructure/db/memory"
	"github.com/KretovDmitry/order-management-service/internal/infrastructure/db/mongo"
	"github.com/KretovDmitry/order-management-service/internal/infrastructure/db/postgres"
	rest "github.com/KretovDmitry/order-management-service/internal/interface/api/rest/chi"
	"github.com/KretovDmitry/order-management-service/internal/interface/api/rest/middleware"
	"github.com/KretovDmitry/order-management-service/pkg/logger"
	"github.com/KretovDmitry/order-management-service/pkg/metrics"
	trmsql "github.com/avito-tech/go-transaction-manager/drivers/sql/v2"
	trmcontext "github.com/avito-tech/go-transaction-manager/trm/v2/context"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
)

// Version indicates the current version of the application.
var Version = "1.0.0"

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Server run context.
	serverCtx, serverStopCtx := context.WithCancel(context.Background())
	defer serverStopCtx()

	// Load application configurations.
	cfg := config.MustLoad()

	// Create root logger tagged with server version.
	logger := logger.New(cfg).With(serverCtx, "version", Version)
	defer func() { _ = logger.Sync() }()

	// Init order storage.
	repo, closeStorage, err := openStorage(serverCtx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStorage()

	// Init services.
	orderService, err := services.NewOrderService(repo, logger)
	if err != nil {
		return fmt.Errorf("failed to init order service: %w", err)
	}

	authService, err := services.NewAuthService(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to init auth service: %w", err)
	}

	var serverMetrics *metrics.ServerMetrics
	if cfg.Metrics.Enabled {
		serverMetrics = metrics.NewServerMetrics("oms")
	}

	// Create root router.
	router := rest.InitChi(cfg, logger, serverMetrics)

	// Public handlers.
	rest.NewHealthController(orderService, logger, rest.ChiServerOptions{
		BaseRouter: router,
	})
	rest.NewAuthController(authService, cfg.JWT.Expiration, logger, rest.ChiServerOptions{
		BaseRouter: router,
	})

	// Handlers behind a bearer token.
	rest.NewOrderController(orderService, cfg.Pagination, logger, rest.ChiServerOptions{
		BaseRouter:  router,
		Middlewares: []rest.MiddlewareFunc{middleware.Authenticate(authService, logger)},
	})

	// Build HTTP server.
	hs := &http.Server{
		Addr:              cfg.HTTPServer.Address,
		ReadHeaderTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:       cfg.HTTPServer.IdleTimeout,
		Handler:           router,
	}

	// Graceful shutdown.
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT,
			syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)

		signal := <-sig

		logger.With(serverCtx, "signal", signal.String()).
			Infof("Shutting down server with %s timeout",
				cfg.HTTPServer.ShutdownTimeout)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
		defer cancel()

		if err := hs.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("graceful shutdown failed: %s", err)
		}
		serverStopCtx()
	}()

	// Start the HTTP server with graceful shutdown.
	logger.Infof("Server %v is running at %v with %s storage",
		Version, cfg.HTTPServer.Address, cfg.Storage.Driver)
	if err = hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("run server failed: %w", err)
	}

	// Wait for server context to be stopped or force exit if timeout exceeded.
	select {
	case <-serverCtx.Done():
	case <-time.After(cfg.HTTPServer.ShutdownTimeout):
		return errors.New("graceful shutdown timed out.. forcing exit")
	}

	return nil
}

// openStorage connects the configured order storage and prepares its indexes.
// The returned func releases the connection.
func openStorage(
	ctx context.Context, cfg *config.Config, logger logger.Logger,
) (repositories.OrderRepository, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverMongoDB:
		session, err := mongo.Connect(cfg, logger)
		if err != nil {
			return nil, nil, err
		}

		repo, err := mongo.NewOrderRepository(session, cfg.Storage, logger)
		if err != nil {
			session.Close()
			return nil, nil, fmt.Errorf("failed to init order repository: %w", err)
		}

		if err = repo.EnsureIndexes(ctx); err != nil {
			session.Close()
			return nil, nil, err
		}

		return repo, session.Close, nil

	case config.DriverPostgres:
		db, err := postgres.Connect(ctx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}

		closeDB := func() {
			if err := db.Close(); err != nil {
				logger.Error(err)
			}
		}

		if err = postgres.EnsureSchema(ctx, db); err != nil {
			closeDB()
			return nil, nil, err
		}

		// Create default transaction manager for database/sql package.
		trManager := manager.Must(
			trmsql.NewDefaultFactory(db),
			manager.WithCtxManager(trmcontext.DefaultManager),
		)

		repo, err := postgres.NewOrderRepository(db, trmsql.DefaultCtxGetter, trManager, logger)
		if err != nil {
			closeDB()
			return nil, nil, fmt.Errorf("failed to init order repository: %w", err)
		}

		return repo, closeDB, nil

	case config.DriverMemory:
		logger.Warn("orders are kept in memory and lost on restart")
		return memory.NewOrderRepository(), func() {}, nil
	}

	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}
