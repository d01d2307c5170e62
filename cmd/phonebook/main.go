package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/ismailco/phonebook/internal/phonebook/app"
	"github.com/ismailco/phonebook/internal/phonebook/repository/postgres"
	phonebookHTTP "github.com/ismailco/phonebook/internal/phonebook/transport/http"
	"github.com/ismailco/phonebook/internal/platform/config"
	"github.com/ismailco/phonebook/internal/platform/database"
	"github.com/ismailco/phonebook/internal/platform/logger"
)

const serviceName = "phonebook"

func main() {
	mainCtx, mainCancel := context.WithCancel(context.Background())
	defer mainCancel()

	cfg, err := config.Load(serviceName)
	if err != nil {
		slog.Error("Failed to load configuration", "service", serviceName, "error", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.LogLevel)
	appLogger = appLogger.With("service", serviceName)
	appLogger.Info("Starting service...",
		"http_port", cfg.HTTPPort,
		"log_level", cfg.LogLevel,
		"postgres_dsn_present", cfg.PostgresDSN != "",
	)

	dbPool, err := database.NewDBPool(mainCtx, cfg.PostgresDSN, database.PoolOptions{
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
	if err != nil {
		appLogger.Error("Failed to initialize database connection pool", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()
	appLogger.Info("Database connection pool initialized")

	if err := database.Migrate(mainCtx, cfg.PostgresDSN); err != nil {
		appLogger.Error("Failed to apply database migrations", "error", err)
		os.Exit(1)
	}
	appLogger.Info("Database migrations applied")

	contactRepo := postgres.NewPgContactRepository(dbPool, appLogger)
	application := app.NewApplication(contactRepo, appLogger)
	flash := phonebookHTTP.NewFlashCodec(cfg.CookieSecret)
	handler := phonebookHTTP.NewPhonebookHandler(application, appLogger, validator.New(), flash)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(cfg.RequestTimeout()))
	handler.RegisterRoutes(r)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           r,
		ReadHeaderTimeout: cfg.RequestTimeout(),
	}

	g, groupCtx := errgroup.WithContext(mainCtx)

	g.Go(func() error {
		appLogger.Info("HTTP server starting", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("HTTP server failed to serve", "error", err)
			return err
		}
		return nil
	})

	g.Go(func() error {
		stopSignal := make(chan os.Signal, 1)
		signal.Notify(stopSignal, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-stopSignal:
			appLogger.Info("Received termination signal", "signal", sig.String())
			mainCancel()
			return nil
		case <-groupCtx.Done():
			return nil
		}
	})

	g.Go(func() error {
		<-groupCtx.Done()
		appLogger.Info("Initiating graceful shutdown of HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			appLogger.Error("HTTP server shutdown failed", "error", err)
			return err
		}
		appLogger.Info("HTTP server has been shut down gracefully.")
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		appLogger.Error("Service group encountered an error", "error", err)
	}

	appLogger.Info("Service shutdown complete.")
}
