// Package app assembles the application: configuration, logging, telemetry,
// storage, domain services and the HTTP server.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"founderpulse/internal/config"
	"founderpulse/internal/infrastructure"
	"founderpulse/internal/llm"
	"founderpulse/internal/mailer"
	"founderpulse/internal/metrics"
	"founderpulse/internal/services"
	"founderpulse/internal/store"
	transport "founderpulse/internal/transport/http"
	"founderpulse/internal/websocket"
)

const Version = "1.0.0"

// Application is the composed service container.
type Application struct {
	Config        *config.Config
	Logger        *slog.Logger
	Store         *store.Store
	Hub           *websocket.Hub
	Server        *http.Server
	OTelProviders *infrastructure.OTelProviders
}

// New loads configuration and wires every component. The returned
// application is ready to Run.
func New() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig wires the application from an already loaded configuration.
func NewWithConfig(cfg *config.Config) (*Application, error) {
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("service", infrastructure.ServiceName),
		slog.String("version", Version))

	otelProviders, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		return nil, fmt.Errorf("initialize telemetry: %w", err)
	}

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	hub := websocket.NewHub(logger)
	hub.Start()

	llmClient := llm.NewClient(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.Timeout, logger)

	// Mail delivery is optional; without an API key the email endpoints
	// report the service as not configured.
	var sender services.Sender
	if cfg.Email.APIKey != "" {
		sender = mailer.New(cfg.Email.APIKey, cfg.Email.SenderEmail, logger)
	} else {
		logger.Warn("email API key not set, delivery disabled")
	}

	engine := metrics.NewEngine(logger)

	svcs := transport.Services{
		Auth:      services.NewAuthService(st, cfg.Auth, logger),
		Data:      services.NewDataService(st, logger),
		Metrics:   services.NewMetricsService(st, engine, hub, logger),
		Insight:   services.NewInsightService(st, llmClient, hub, logger),
		Narrative: services.NewNarrativeService(st, llmClient, logger),
		Update:    services.NewUpdateService(st, llmClient, logger),
		Contact:   services.NewContactService(st, logger),
		Email:     services.NewEmailService(st, sender, logger),
		Dashboard: services.NewDashboardService(st, logger),
		Health:    services.NewHealthService(st, logger),
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	router := transport.NewRouter(transport.RouterDeps{
		Config:   cfg,
		Logger:   logger,
		Store:    st,
		Hub:      hub,
		Services: svcs,
		Registry: registry,
	})

	server := &http.Server{
		Addr:           cfg.ListenAddr(),
		Handler:        router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	return &Application{
		Config:        cfg,
		Logger:        logger,
		Store:         st,
		Hub:           hub,
		Server:        server,
		OTelProviders: otelProviders,
	}, nil
}

// Run serves HTTP until SIGINT/SIGTERM, then shuts down gracefully.
func (a *Application) Run() error {
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("http server listening", slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-sigCh:
		a.Logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()
	return a.Shutdown(ctx)
}

// Shutdown stops the server, the websocket hub, telemetry and the store.
func (a *Application) Shutdown(ctx context.Context) error {
	a.Logger.Info("shutting down")

	if err := a.Server.Shutdown(ctx); err != nil {
		a.Logger.Error("http server shutdown failed", slog.String("error", err.Error()))
	}

	a.Hub.Shutdown()

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(ctx); err != nil {
			a.Logger.Warn("telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}

	if err := a.Store.Close(); err != nil {
		a.Logger.Warn("store close failed", slog.String("error", err.Error()))
	}

	infrastructure.CloseLogFile()
	a.Logger.Info("shutdown complete")
	return nil
}
