package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "founderpulse/internal/errors"
	"founderpulse/internal/middleware"
	"founderpulse/internal/services"
)

// AuthHandler exposes the session endpoints.
type AuthHandler struct {
	service      *services.AuthService
	auth         *middleware.Authenticator
	cookieSecure bool
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(service *services.AuthService, auth *middleware.Authenticator, cookieSecure bool, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *AuthHandler {
	return &AuthHandler{
		service:      service,
		auth:         auth,
		cookieSecure: cookieSecure,
		logger:       logger.With(slog.String("component", "auth_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the auth routes. Session exchange and dev login are public;
// the rest require a session.
func (h *AuthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/session", h.CreateSession)
	r.Post("/dev-login", h.DevLogin)
	r.Post("/logout", h.Logout)

	r.Group(func(r chi.Router) {
		r.Use(h.auth.RequireSession)
		r.Get("/me", h.Me)
	})

	return r
}

type sessionRequest struct {
	SessionID string `json:"session_id"`
}

// CreateSession handles POST /api/auth/session.
func (h *AuthHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("session_id", "session_id is required"))
		return
	}

	user, token, err := h.service.ExchangeSession(r.Context(), req.SessionID)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.setSessionCookie(w, token, h.service.SessionTTL())
	render.JSON(w, r, user)
}

// DevLogin handles POST /api/auth/dev-login. Only active when enabled in
// configuration.
func (h *AuthHandler) DevLogin(w http.ResponseWriter, r *http.Request) {
	user, token, err := h.service.DevLogin(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.setSessionCookie(w, token, h.service.SessionTTL())
	render.JSON(w, r, user)
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.ErrUnauthenticated)
		return
	}
	render.JSON(w, r, user)
}

// Logout handles POST /api/auth/logout. Always clears the cookie, even
// without a live session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.ExtractSessionToken(r); token != "" {
		if err := h.service.Logout(r.Context(), token); err != nil {
			h.logger.WarnContext(r.Context(), "session delete failed", "error", err)
		}
	}

	h.setSessionCookie(w, "", -time.Hour)
	render.JSON(w, r, map[string]any{"ok": true})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteNoneMode,
	})
}
