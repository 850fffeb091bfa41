package http

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "founderpulse/internal/errors"
	"founderpulse/internal/middleware"
	"founderpulse/internal/services"
)

// UpdateHandler exposes the founder journal endpoints.
type UpdateHandler struct {
	service        *services.UpdateService
	maxUploadBytes int64
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
}

// NewUpdateHandler creates the update handler.
func NewUpdateHandler(service *services.UpdateService, maxUploadBytes int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *UpdateHandler {
	return &UpdateHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With(slog.String("component", "update_handler")),
		errorHandler:   errorHandler,
	}
}

// Routes returns the journal routes.
func (h *UpdateHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Post("/ai-analyze", h.Analyze)
	r.Route("/{updateID}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Delete("/", h.Delete)
	})

	return r
}

type updateRequest struct {
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
	Images  []string `json:"images"`
}

// Create handles POST /api/updates. Accepts JSON, or a multipart form with
// content, comma-separated tags and image parts (stored base64-encoded).
func (h *UpdateHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	var req updateRequest
	if strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
		if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("body", "could not parse multipart form"))
			return
		}
		req.Content = r.FormValue("content")
		for _, t := range strings.Split(r.FormValue("tags"), ",") {
			if t = strings.TrimSpace(t); t != "" {
				req.Tags = append(req.Tags, t)
			}
		}
		for name, headers := range r.MultipartForm.File {
			if !strings.HasPrefix(name, "image") {
				continue
			}
			for _, fh := range headers {
				f, err := fh.Open()
				if err != nil {
					continue
				}
				data, err := io.ReadAll(f)
				f.Close()
				if err != nil {
					continue
				}
				req.Images = append(req.Images, base64.StdEncoding.EncodeToString(data))
			}
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
			return
		}
	}

	update, err := h.service.Create(r.Context(), user.ID, req.Content, req.Tags, req.Images)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, update)
}

// List handles GET /api/updates.
func (h *UpdateHandler) List(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	updates, err := h.service.List(r.Context(), user.ID)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, updates)
}

// Get handles GET /api/updates/{updateID}.
func (h *UpdateHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	update, err := h.service.Get(r.Context(), user.ID, chi.URLParam(r, "updateID"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, update)
}

// Delete handles DELETE /api/updates/{updateID}.
func (h *UpdateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	if err := h.service.Delete(r.Context(), user.ID, chi.URLParam(r, "updateID")); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{"ok": true})
}

type analyzeRequest struct {
	Days int `json:"days"`
}

// Analyze handles POST /api/updates/ai-analyze. An empty body defaults to a
// 7 day window.
func (h *UpdateHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	req := analyzeRequest{Days: 7}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
			return
		}
	}

	analysis, err := h.service.Analyze(r.Context(), user.ID, req.Days)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, analysis)
}
