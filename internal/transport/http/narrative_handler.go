package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "founderpulse/internal/errors"
	"founderpulse/internal/middleware"
	"founderpulse/internal/services"
)

// NarrativeHandler exposes the narrative generator endpoints.
type NarrativeHandler struct {
	service      *services.NarrativeService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewNarrativeHandler creates the narrative handler.
func NewNarrativeHandler(service *services.NarrativeService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *NarrativeHandler {
	return &NarrativeHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "narrative_handler")),
		errorHandler: errorHandler,
	}
}

// GenerateRoutes returns the /api/narrative routes.
func (h *NarrativeHandler) GenerateRoutes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Post("/generate", h.Generate)
	return r
}

// ListRoutes returns the /api/narratives routes.
func (h *NarrativeHandler) ListRoutes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/", h.List)
	r.Get("/{narrativeID}", h.Get)
	return r
}

type narrativeRequest struct {
	DatasetID     string `json:"dataset_id"`
	NarrativeType string `json:"narrative_type"`
	CustomContext string `json:"custom_context"`
}

// Generate handles POST /api/narrative/generate.
func (h *NarrativeHandler) Generate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	var req narrativeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DatasetID == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("dataset_id", "dataset_id is required"))
		return
	}
	if req.NarrativeType == "" {
		req.NarrativeType = services.NarrativeTractionStatement
	}

	narrative, err := h.service.Generate(r.Context(), user.ID, req.DatasetID, req.NarrativeType, req.CustomContext)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, narrative)
}

// List handles GET /api/narratives.
func (h *NarrativeHandler) List(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	narratives, err := h.service.List(r.Context(), user.ID)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, narratives)
}

// Get handles GET /api/narratives/{narrativeID}.
func (h *NarrativeHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	narrative, err := h.service.Get(r.Context(), user.ID, chi.URLParam(r, "narrativeID"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, narrative)
}
