package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/user/listing-harvester/cmd/common"
	"github.com/user/listing-harvester/internal/delivery/http/handler"
	"github.com/user/listing-harvester/internal/delivery/http/router"
	"github.com/user/listing-harvester/internal/extract"
	"github.com/user/listing-harvester/internal/usecase"
	"github.com/user/listing-harvester/pkg/config"
	"github.com/user/listing-harvester/pkg/logger"
	"github.com/user/listing-harvester/pkg/metrics"
)

func main() {
	// --- Configuration ---
	cfg := config.Load()

	// --- Logger ---
	logLevel := slog.LevelInfo
	if cfg.LogLevel == "debug" {
		logLevel = slog.LevelDebug
	}
	logger.Init(os.Stdout, logLevel)
	slog.Info("Logger initialized", "level", logLevel.String())

	// --- Metrics ---
	metrics.Init()

	// --- Storage ---
	ctx := context.Background()
	stores, err := common.BuildStores(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize storage", "backend", cfg.StorageBackend, "error", err)
		os.Exit(1)
	}
	defer stores.Close()
	slog.Info("Storage initialized", "backend", cfg.StorageBackend)

	// --- Use Cases ---
	engine := extract.NewEngine()
	linkManager := usecase.NewLinkManager(stores.Links, stores.Listings, stores.Checkpoints)
	harvester := usecase.NewHarvester(usecase.HarvestConfig{
		WorkerCount: cfg.WorkerCount,
		BatchSize:   cfg.BatchSize,
		MaxAttempts: cfg.MaxAttempts,
		BaseBackoff: cfg.BaseBackoff,
	}, stores.Links, stores.Listings, stores.Checkpoints, common.BuildFetcherFactory(cfg), engine)
	exporter := usecase.NewExporter(stores.Listings, cfg.OutputDir)

	// --- HTTP Server ---
	apiHandler := handler.NewHandler(linkManager, harvester, exporter)
	httpRouter := router.New(apiHandler)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      httpRouter,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("Starting server", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Could not listen on port", "port", cfg.ServerPort, "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
}
