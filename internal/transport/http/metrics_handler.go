package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "founderpulse/internal/errors"
	"founderpulse/internal/middleware"
	"founderpulse/internal/services"
)

// MetricsHandler exposes derivation endpoints.
type MetricsHandler struct {
	service      *services.MetricsService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewMetricsHandler creates the metrics handler.
func NewMetricsHandler(service *services.MetricsService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *MetricsHandler {
	return &MetricsHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "metrics_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the metrics routes.
func (h *MetricsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/compute/{datasetID}", h.Compute)
	r.Get("/{datasetID}", h.Get)

	return r
}

// Compute handles POST /api/metrics/compute/{datasetID}.
func (h *MetricsHandler) Compute(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	record, err := h.service.Compute(r.Context(), user.ID, chi.URLParam(r, "datasetID"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, record)
}

// Get handles GET /api/metrics/{datasetID}.
func (h *MetricsHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	record, err := h.service.Get(r.Context(), user.ID, chi.URLParam(r, "datasetID"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, record)
}
