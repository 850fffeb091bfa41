package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "founderpulse/internal/errors"
	"founderpulse/internal/middleware"
	"founderpulse/internal/services"
)

// DataHandler exposes dataset upload and access endpoints.
type DataHandler struct {
	service        *services.DataService
	maxUploadBytes int64
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
}

// NewDataHandler creates the data handler.
func NewDataHandler(service *services.DataService, maxUploadBytes int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DataHandler {
	return &DataHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With(slog.String("component", "data_handler")),
		errorHandler:   errorHandler,
	}
}

// Routes returns the dataset routes.
func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/upload", h.Upload)
	r.Get("/datasets", h.ListDatasets)
	r.Route("/datasets/{datasetID}", func(r chi.Router) {
		r.Get("/", h.GetDataset)
		r.Delete("/", h.DeleteDataset)
	})

	return r
}

// Upload handles POST /api/data/upload. Expects a multipart form with a
// "file" part holding a CSV or XLSX table.
func (h *DataHandler) Upload(w http.ResponseWriter, r *http.Request) {
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

	ds, err := h.service.Upload(r.Context(), user.ID, header.Filename, file)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, ds.Summary())
}

// ListDatasets handles GET /api/data/datasets.
func (h *DataHandler) ListDatasets(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	datasets, err := h.service.List(r.Context(), user.ID)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, datasets)
}

// GetDataset handles GET /api/data/datasets/{datasetID}.
func (h *DataHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	ds, err := h.service.Get(r.Context(), user.ID, chi.URLParam(r, "datasetID"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, ds)
}

// DeleteDataset handles DELETE /api/data/datasets/{datasetID}.
func (h *DataHandler) DeleteDataset(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	if err := h.service.Delete(r.Context(), user.ID, chi.URLParam(r, "datasetID")); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{"ok": true})
}
