// Package http wires the REST API. Handlers translate between the wire and
// the services layer; all errors flow through the RFC 7807 error handler.
package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"founderpulse/internal/config"
	apierrors "founderpulse/internal/errors"
	"founderpulse/internal/middleware"
	"founderpulse/internal/services"
	"founderpulse/internal/store"
	"founderpulse/internal/websocket"
)

// Services bundles the domain services the router exposes.
type Services struct {
	Auth      *services.AuthService
	Data      *services.DataService
	Metrics   *services.MetricsService
	Insight   *services.InsightService
	Narrative *services.NarrativeService
	Update    *services.UpdateService
	Contact   *services.ContactService
	Email     *services.EmailService
	Dashboard *services.DashboardService
	Health    *services.HealthService
}

// RouterDeps carries everything NewRouter needs.
type RouterDeps struct {
	Config   *config.Config
	Logger   *slog.Logger
	Store    *store.Store
	Hub      *websocket.Hub
	Services Services
	Registry *prometheus.Registry
}

// NewRouter assembles the full middleware chain and mounts every API
// surface. /api/health and /metrics are public; the rest of /api requires a
// session.
func NewRouter(deps RouterDeps) chi.Router {
	cfg := deps.Config
	logger := deps.Logger
	errorHandler := apierrors.NewErrorHandler(logger, false)
	authenticator := middleware.NewAuthenticator(deps.Store, errorHandler)
	validation := middleware.NewValidationMiddleware(logger)

	registry := deps.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	httpMetrics := middleware.NewHTTPMetrics(registry)

	r := chi.NewRouter()

	// Only writer-transparent middleware ahead of the websocket route; the
	// upgrade needs the raw ResponseWriter and an uncancelled context.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)

	if deps.Hub != nil {
		r.Get("/api/ws", func(w http.ResponseWriter, r *http.Request) {
			if err := websocket.ServeWS(deps.Hub, w, r); err != nil {
				logger.WarnContext(r.Context(), "websocket upgrade failed", "error", err)
			}
		})
	}

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	healthHandler := NewHealthHandler(deps.Services.Health, logger)
	authHandler := NewAuthHandler(deps.Services.Auth, authenticator, cfg.Auth.CookieSecure, logger, errorHandler)
	dataHandler := NewDataHandler(deps.Services.Data, cfg.Server.MaxUploadBytes, logger, errorHandler)
	metricsHandler := NewMetricsHandler(deps.Services.Metrics, logger, errorHandler)
	insightHandler := NewInsightHandler(deps.Services.Insight, logger, errorHandler)
	narrativeHandler := NewNarrativeHandler(deps.Services.Narrative, logger, errorHandler)
	updateHandler := NewUpdateHandler(deps.Services.Update, cfg.Server.MaxUploadBytes, logger, errorHandler)
	contactHandler := NewContactHandler(deps.Services.Contact, cfg.Server.MaxUploadBytes, logger, errorHandler)
	emailHandler := NewEmailHandler(deps.Services.Email, validation, logger, errorHandler)
	dashboardHandler := NewDashboardHandler(deps.Services.Dashboard, logger, errorHandler)

	r.Group(func(r chi.Router) {
		r.Use(middleware.StructuredLogger(logger))
		r.Use(middleware.Recoverer(logger))
		r.Use(httpMetrics.Handler)
		if cfg.Security.EnableCORS {
			r.Use(middleware.CORS(middleware.CORSConfig{
				AllowedOrigins:   cfg.Security.AllowedOrigins,
				AllowCredentials: true,
			}))
		}
		r.Use(middleware.SecurityHeaders)
		if cfg.Security.RateLimit.Enabled {
			limiter := middleware.NewRateLimiter(cfg.Security.RateLimit.RPS, cfg.Security.RateLimit.Burst, logger)
			r.Use(limiter.Handler)
		}
		r.Use(chimiddleware.Compress(5))
		r.Use(middleware.Timeout(cfg.Server.WriteTimeout))

		r.Route("/api", func(r chi.Router) {
			r.Get("/health", healthHandler.Health)
			r.Mount("/auth", authHandler.Routes())

			r.Group(func(r chi.Router) {
				r.Use(authenticator.RequireSession)

				r.Mount("/data", dataHandler.Routes())
				r.Mount("/metrics", metricsHandler.Routes())
				r.Mount("/insights", insightHandler.Routes())
				r.Mount("/narrative", narrativeHandler.GenerateRoutes())
				r.Mount("/narratives", narrativeHandler.ListRoutes())
				r.Mount("/updates", updateHandler.Routes())
				r.Mount("/contacts", contactHandler.Routes())
				r.Mount("/email", emailHandler.Routes())
				r.Mount("/dashboard", dashboardHandler.Routes())
			})
		})

		r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	})

	return r
}
