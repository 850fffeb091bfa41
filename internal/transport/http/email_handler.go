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

// EmailHandler exposes the outbound mail endpoints.
type EmailHandler struct {
	service      *services.EmailService
	validation   *middleware.ValidationMiddleware
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewEmailHandler creates the email handler.
func NewEmailHandler(service *services.EmailService, validation *middleware.ValidationMiddleware, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *EmailHandler {
	return &EmailHandler{
		service:      service,
		validation:   validation,
		logger:       logger.With(slog.String("component", "email_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the email routes.
func (h *EmailHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/send", h.Send)
	r.Get("/logs", h.Logs)

	return r
}

// Send handles POST /api/email/send.
func (h *EmailHandler) Send(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	var req services.SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validation.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	report, err := h.service.Send(r.Context(), user.ID, req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, report)
}

// Logs handles GET /api/email/logs.
func (h *EmailHandler) Logs(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	logs, err := h.service.Logs(r.Context(), user.ID)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, logs)
}
