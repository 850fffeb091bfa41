package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "founderpulse/internal/errors"
	"founderpulse/internal/middleware"
	"founderpulse/internal/services"
)

// ContactHandler exposes the contact manager endpoints.
type ContactHandler struct {
	service        *services.ContactService
	maxUploadBytes int64
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
}

// NewContactHandler creates the contact handler.
func NewContactHandler(service *services.ContactService, maxUploadBytes int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ContactHandler {
	return &ContactHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With(slog.String("component", "contact_handler")),
		errorHandler:   errorHandler,
	}
}

// Routes returns the contact routes.
func (h *ContactHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/tags", h.Tags)
	r.Post("/import", h.Import)
	r.Route("/{contactID}", func(r chi.Router) {
		r.Put("/", h.Update)
		r.Delete("/", h.Delete)
	})

	return r
}

// Create handles POST /api/contacts.
func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	var in services.ContactInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	contact, err := h.service.Create(r.Context(), user.ID, in)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, contact)
}

// List handles GET /api/contacts with an optional ?tag= filter.
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	contacts, err := h.service.List(r.Context(), user.ID, r.URL.Query().Get("tag"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, contacts)
}

// Tags handles GET /api/contacts/tags.
func (h *ContactHandler) Tags(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	counts, err := h.service.TagCounts(r.Context(), user.ID)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, counts)
}

// Update handles PUT /api/contacts/{contactID}.
func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	var in services.ContactInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	contact, err := h.service.Update(r.Context(), user.ID, chi.URLParam(r, "contactID"), in)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, contact)
}

// Delete handles DELETE /api/contacts/{contactID}.
func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	if err := h.service.Delete(r.Context(), user.ID, chi.URLParam(r, "contactID")); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{"ok": true})
}

// Import handles POST /api/contacts/import with a multipart "file" part.
func (h *ContactHandler) Import(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.errorHandler.HandleError(w, r, apierrors.ErrPayloadTooLarge)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "multipart file field is required"))
		return
	}
	defer file.Close()

	report, err := h.service.Import(r.Context(), user.ID, header.Filename, file)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, report)
}
