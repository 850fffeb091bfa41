package middleware

import (
	"context"
	"net/http"
	"strings"

	apierrors "founderpulse/internal/errors"
	"founderpulse/internal/store"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "session_token"

const (
	userContextKey  contextKey = "auth-user"
	tokenContextKey contextKey = "auth-token"
)

// SessionStore resolves session tokens to users.
type SessionStore interface {
	GetSession(ctx context.Context, token string) (*store.Session, error)
	GetUser(ctx context.Context, id string) (*store.User, error)
}

// Authenticator guards routes behind a valid session.
type Authenticator struct {
	sessions     SessionStore
	errorHandler *apierrors.ErrorHandler
}

// NewAuthenticator creates session middleware over the given store.
func NewAuthenticator(sessions SessionStore, errorHandler *apierrors.ErrorHandler) *Authenticator {
	return &Authenticator{sessions: sessions, errorHandler: errorHandler}
}

// RequireSession rejects requests without a valid session and injects the
// resolved user into the request context.
func (a *Authenticator) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ExtractSessionToken(r)
		if token == "" {
			a.errorHandler.HandleError(w, r, apierrors.ErrUnauthenticated)
			return
		}

		session, err := a.sessions.GetSession(r.Context(), token)
		if err != nil {
			a.errorHandler.HandleError(w, r, err)
			return
		}

		user, err := a.sessions.GetUser(r.Context(), session.UserID)
		if err != nil {
			a.errorHandler.HandleError(w, r, apierrors.ErrUnauthenticated)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		ctx = context.WithValue(ctx, tokenContextKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ExtractSessionToken reads the session token from the cookie or, failing
// that, a bearer Authorization header.
func ExtractSessionToken(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// UserFromContext returns the user injected by RequireSession. The second
// return is false when the request never passed the session middleware.
func UserFromContext(ctx context.Context) (*store.User, bool) {
	user, ok := ctx.Value(userContextKey).(*store.User)
	return user, ok
}

// TokenFromContext returns the session token the request authenticated with.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey).(string)
	return token
}
