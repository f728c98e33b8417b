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

	"github.com/KretovDmitry/storefront/internal/auth"
	"github.com/KretovDmitry/storefront/internal/config"
	"github.com/KretovDmitry/storefront/internal/orders"
	"github.com/KretovDmitry/storefront/internal/postgres"
	"github.com/KretovDmitry/storefront/internal/reports"
	"github.com/KretovDmitry/storefront/pkg/accesslog"
	"github.com/KretovDmitry/storefront/pkg/limiter"
	"github.com/KretovDmitry/storefront/pkg/logger"
	"github.com/KretovDmitry/storefront/pkg/metrics"
	"github.com/KretovDmitry/storefront/pkg/unzip"
	trmsql "github.com/avito-tech/go-transaction-manager/drivers/sql/v2"
	trmcontext "github.com/avito-tech/go-transaction-manager/trm/v2/context"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/nanmu42/gzip"
	"github.com/prometheus/client_golang/prometheus"
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

	db, err := postgres.Connect(serverCtx, cfg, logger)
	if err != nil {
		return err
	}

	// Close connection.
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error(err)
		}
		_ = logger.Sync()
	}()

	if err = postgres.InitSchema(serverCtx, db); err != nil {
		return err
	}

	// Create default transaction manager for database/sql package.
	trManager := manager.Must(
		trmsql.NewDefaultFactory(db),
		manager.WithCtxManager(trmcontext.DefaultManager),
	)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	// Init auth.
	authRepo, err := auth.NewRepository(db, logger)
	if err != nil {
		return fmt.Errorf("failed to init auth repository: %w", err)
	}

	authService, err := auth.NewService(authRepo, logger, cfg)
	if err != nil {
		return fmt.Errorf("failed to init auth service: %w", err)
	}

	// Init order status machine.
	ordersRepo, err := orders.NewRepository(db, trmsql.DefaultCtxGetter, logger)
	if err != nil {
		return fmt.Errorf("failed to init orders repository: %w", err)
	}

	ordersService, err := orders.NewService(ordersRepo, trManager, logger)
	if err != nil {
		return fmt.Errorf("failed to init orders service: %w", err)
	}

	ordersAPI, err := orders.NewAPI(ordersService, logger)
	if err != nil {
		return fmt.Errorf("failed to init orders api: %w", err)
	}

	// Init sales reports.
	reportsRepo, err := reports.NewRepository(db, trmsql.DefaultCtxGetter, logger)
	if err != nil {
		return fmt.Errorf("failed to init reports repository: %w", err)
	}

	// PDF export stays off when wkhtmltopdf is missing.
	var renderer reports.Renderer
	if pdf, err := reports.NewWkhtmltopdfRenderer(cfg.Export.WkhtmltopdfPath); err != nil {
		logger.Infof("PDF export disabled: %s", err)
	} else {
		renderer = pdf
	}

	reportsService, err := reports.NewService(reportsRepo, renderer, logger, cfg)
	if err != nil {
		return fmt.Errorf("failed to init reports service: %w", err)
	}

	reportsAPI, err := reports.NewAPI(reportsService, logger)
	if err != nil {
		return fmt.Errorf("failed to init reports api: %w", err)
	}

	// Create root router.
	router := initRootRouter(logger)

	router.Method(http.MethodGet, "/metrics", metrics.Handler())

	// Init handlers for order routes.
	orders.HandlerWithOptions(ordersAPI, orders.ChiServerOptions{
		BaseRouter:       router,
		Middlewares:      []orders.MiddlewareFunc{authService.Middleware},
		StaffMiddlewares: []orders.MiddlewareFunc{auth.RequireStaff},
		ErrorHandlerFunc: orders.ErrorHandlerFunc,
	})

	// Init handlers for report routes.
	exportLimiter := limiter.New(cfg.Export.RateInterval, cfg.Export.Burst)

	reports.HandlerWithOptions(reportsAPI, reports.ChiServerOptions{
		BaseRouter:        router,
		Middlewares:       []reports.MiddlewareFunc{authService.Middleware},
		OwnerMiddlewares:  []reports.MiddlewareFunc{auth.RequireOwner},
		ExportMiddlewares: []reports.MiddlewareFunc{exportLimiter.Middleware},
		StaffMiddlewares:  []reports.MiddlewareFunc{auth.RequireStaff},
		ErrorHandlerFunc:  reports.ErrorHandlerFunc,
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

		shutdownCtx, cancel := context.WithTimeout(serverCtx, cfg.HTTPServer.ShutdownTimeout)
		defer cancel()

		if err := hs.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("graceful shutdown failed: %s", err)
		}
		serverStopCtx()
	}()

	// Start the HTTP server with graceful shutdown.
	logger.Infof("Server %v is running at %v", Version, cfg.HTTPServer.Address)
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

func initRootRouter(logger logger.Logger) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(accesslog.Handler(logger))
	router.Use(metrics.Middleware)
	router.Use(middleware.Recoverer)
	router.Use(gzip.DefaultHandler().WrapHandler)
	router.Use(unzip.Middleware(logger))

	return router
}
