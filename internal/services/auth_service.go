package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"founderpulse/internal/config"
	apierrors "founderpulse/internal/errors"
	"founderpulse/internal/store"
)

// AuthService exchanges provider sessions for local ones and manages their
// lifecycle.
type AuthService struct {
	store      *store.Store
	cfg        config.AuthConfig
	httpClient *http.Client
	logger     *slog.Logger
}

// NewAuthService creates the auth service.
func NewAuthService(st *store.Store, cfg config.AuthConfig, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:      st,
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger.With(slog.String("component", "auth_service")),
	}
}

// providerSession is the identity provider's session-data response.
type providerSession struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Picture      string `json:"picture"`
	SessionToken string `json:"session_token"`
}

// ExchangeSession resolves the provider session ID to user data, upserts the
// user and opens a local session. Returns the user and the session token to
// set as a cookie.
func (s *AuthService) ExchangeSession(ctx context.Context, sessionID string) (*store.User, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.ProviderURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build provider request: %w", err)
	}
	req.Header.Set("X-Session-ID", sessionID)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: provider unreachable: %v", apierrors.ErrUnauthenticated, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.WarnContext(ctx, "session exchange rejected", "status", resp.StatusCode)
		return nil, "", apierrors.ErrUnauthenticated
	}

	var session providerSession
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&session); err != nil {
		return nil, "", fmt.Errorf("decode provider response: %w", err)
	}
	if session.Email == "" || session.SessionToken == "" {
		return nil, "", apierrors.ErrUnauthenticated
	}

	user, err := s.store.UpsertUserByEmail(ctx, session.Email, session.Name, session.Picture)
	if err != nil {
		return nil, "", err
	}

	if _, err := s.store.CreateSession(ctx, session.SessionToken, user.ID, time.Now().Add(s.cfg.SessionTTL)); err != nil {
		return nil, "", err
	}

	s.logger.InfoContext(ctx, "session opened", "user_id", user.ID)
	return user, session.SessionToken, nil
}

// DevLogin opens a local session for a fixed development account. Gated by
// configuration; returns not-found semantics when disabled so the endpoint
// is invisible in production.
func (s *AuthService) DevLogin(ctx context.Context) (*store.User, string, error) {
	if !s.cfg.EnableDevLogin {
		return nil, "", apierrors.ErrNotFound
	}

	user, err := s.store.UpsertUserByEmail(ctx, "dev@founderpulse.local", "Dev Founder", "")
	if err != nil {
		return nil, "", err
	}

	token := "dev_" + uuid.New().String()
	if _, err := s.store.CreateSession(ctx, token, user.ID, time.Now().Add(s.cfg.SessionTTL)); err != nil {
		return nil, "", err
	}

	s.logger.InfoContext(ctx, "dev session opened", "user_id", user.ID)
	return user, token, nil
}

// Logout deletes the session token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.store.DeleteSession(ctx, token)
}

// SessionTTL exposes the configured session lifetime for cookie expiry.
func (s *AuthService) SessionTTL() time.Duration {
	return s.cfg.SessionTTL
}
