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

// InsightHandler exposes the AI analysis endpoints.
type InsightHandler struct {
	service      *services.InsightService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewInsightHandler creates the insight handler.
func NewInsightHandler(service *services.InsightService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *InsightHandler {
	return &InsightHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "insight_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the insight routes.
func (h *InsightHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/generate/{datasetID}", h.Generate)
	r.Get("/{datasetID}", h.Get)

	return r
}

// Generate handles POST /api/insights/generate/{datasetID}.
func (h *InsightHandler) Generate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	insight, err := h.service.Generate(r.Context(), user.ID, chi.URLParam(r, "datasetID"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, insight)
}

// Get handles GET /api/insights/{datasetID}.
func (h *InsightHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	insight, err := h.service.Get(r.Context(), user.ID, chi.URLParam(r, "datasetID"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, insight)
}
