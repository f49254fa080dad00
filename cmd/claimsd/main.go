package main

import (
	"claims_manager/internal/api"
	"claims_manager/internal/config"
	"claims_manager/internal/query"
	"claims_manager/internal/rbac"
	"claims_manager/internal/repository/memory"
	"claims_manager/internal/service"
	"claims_manager/internal/workflow"
	"claims_manager/pkg/crypto"
	"claims_manager/pkg/metrics"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const (
	appName = "claims_manager"
)

func main() {
	configFile := flag.String("config", "", "path to an optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.LogLevel)
	logger.Info("Starting application",
		slog.String("name", appName))

	claimMetrics := metrics.NewClaimMetrics(logger)
	signer := crypto.NewSigner(cfg.SigningSecret, logger)
	claimRepo := memory.NewClaimRepository()
	gate := rbac.NewGate(logger)
	notificationService := setupNotificationService(cfg.NotificationWorkers, logger)

	engine := workflow.NewEngine(claimRepo, gate, claimMetrics, cfg.SLAWindowDays, cfg.DefaultAssignee, logger).
		WithNotifier(notificationService)
	queries := query.NewEngine(claimRepo, gate, logger)

	if cfg.SeedDemoData {
		if err := seedDemoData(claimRepo); err != nil {
			logger.Error("Demo data seeding failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("Demo data seeded")
	}

	apiHandler := api.NewAPIHandler(engine, queries, signer, logger)
	metricsServer := claimMetrics.StartMetricsServer(cfg.MetricsAddr)
	httpServer := startHTTPServer(cfg.ListenAddr, apiHandler, logger)
	waitForShutdown(logger, httpServer, metricsServer, notificationService)
	logger.Info("Application shutdown complete")
}

func setupLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: lvl,
	}

	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}

func setupNotificationService(workers int, logger *slog.Logger) *service.NotificationService {
	emailService := &service.MockEmailService{}
	smsService := &service.MockSMSService{}

	return service.NewNotificationService(
		emailService,
		smsService,
		workers,
		logger,
	)
}

func startHTTPServer(addr string, apiHandler *api.APIHandler, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()

	apiHandler.RegisterRoutes(mux)

	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"name": "%s", "status": "ok"}`, appName)
	})

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	return server
}

func waitForShutdown(
	logger *slog.Logger,
	httpServer *http.Server,
	metricsServer *http.Server,
	notificationService *service.NotificationService,
) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	logger.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown failed", slog.String("error", err.Error()))
	}

	if err := metricsServer.Shutdown(ctx); err != nil {
		logger.Error("Metrics server shutdown failed", slog.String("error", err.Error()))
	}

	if err := notificationService.Shutdown(ctx); err != nil {
		logger.Error("Notification service shutdown failed", slog.String("error", err.Error()))
	}
}
