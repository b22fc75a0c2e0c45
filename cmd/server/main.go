// Package main initializes and starts the storefront gateway server,
// setting up configuration, logging, the session store, the backend API
// client, the image blob cache, and the HTTP routes.
package main

import (
	"cmp"
	"context"
	"fmt"
	"time"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/wawanher487/e-commerceApps/internal/assets"
	"github.com/wawanher487/e-commerceApps/internal/config"
	"github.com/wawanher487/e-commerceApps/internal/db"
	"github.com/wawanher487/e-commerceApps/internal/gateway"
	"github.com/wawanher487/e-commerceApps/internal/logger"
	"github.com/wawanher487/e-commerceApps/internal/repository"
	"github.com/wawanher487/e-commerceApps/internal/server/handler/http"
	"github.com/wawanher487/e-commerceApps/internal/service"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line, config file, and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	// Initialize the PostgreSQL session store.
	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}

	// Session lifecycle over the Postgres repository.
	sessionRepo := repository.NewPostgresSessionRepository(postgresDB)
	sessionService := service.NewSessionService(sessionRepo)

	// The single backend client; clears the session on any 401/403.
	backend := gateway.New(options.BackendURL, sessionService, zapLogger)

	// Authenticated image fetching into the local blob cache.
	blobs := assets.NewManager(backend, zapLogger)

	// Sweep session rows abandoned without a logout, freeing their blobs.
	db.StartSessionSweeper(context.Background(), postgresDB,
		time.Hour,       // interval
		30*24*time.Hour, // retention: 30 days
		blobs.ReleaseSession,
		zapLogger,
	)

	// View controllers.
	handlers := http.Handlers{
		Auth: &http.AuthHandler{
			Gateway: backend, Sessions: sessionService, Assets: blobs, Log: zapLogger,
		},
		Catalog: &http.CatalogHandler{
			Gateway: backend, Assets: blobs,
			ProductImagePath: options.ProductImagePath, Log: zapLogger,
		},
		Cart: &http.CartHandler{Gateway: backend, Assets: blobs, Log: zapLogger},
		Orders: &http.OrderHandler{
			Gateway: backend, Assets: blobs, Log: zapLogger,
		},
		Profile: &http.ProfileHandler{
			Gateway: backend, Assets: blobs,
			UserImagePath: options.UserImagePath, Log: zapLogger,
		},
		AdminProducts: &http.AdminProductHandler{
			Gateway: backend, Assets: blobs,
			ProductImagePath: options.ProductImagePath, Log: zapLogger,
		},
		AdminUsers: &http.AdminUserHandler{
			Gateway: backend, Assets: blobs,
			UserImagePath: options.UserImagePath, Log: zapLogger,
		},
		AdminOrders: &http.AdminOrderHandler{Gateway: backend, Assets: blobs, Log: zapLogger},
	}

	// Build the router with middleware and routes.
	router := http.NewRouter(handlers, sessionService, blobs, zapLogger)

	server := &nethttp.Server{
		Addr:    options.Addr,
		Handler: router,
	}

	zapLogger.Info("starting HTTP server",
		zap.String("addr", options.Addr),
		zap.String("backend", options.BackendURL))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}
