package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	apierrors "founderpulse/internal/errors"
)

// UpsertUserByEmail returns the existing user for the email or creates one.
// Name and picture refresh on every login.
func (s *Store) UpsertUserByEmail(ctx context.Context, email, name, picture string) (*User, error) {
	existing, err := s.GetUserByEmail(ctx, email)
	if err == nil {
		_, err = s.db.ExecContext(ctx,
			`UPDATE users SET name = ?, picture = ? WHERE id = ?`,
			name, picture, existing.ID)
		if err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
		existing.Name = name
		existing.Picture = picture
		return existing, nil
	}
	if !errors.Is(err, apierrors.ErrUserNotFound) {
		return nil, err
	}

	user := &User{
		ID:        NewID("user"),
		Email:     email,
		Name:      name,
		Picture:   picture,
		CreatedAt: time.Now().UTC(),
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, name, picture, created_at) VALUES (?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.Name, user.Picture, user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

// GetUser returns the user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, email, name, picture, created_at FROM users WHERE id = ?`, id))
}

// GetUserByEmail returns the user by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, email, name, picture, created_at FROM users WHERE email = ?`, email))
}

func (s *Store) scanUser(row *sql.Row) (*User, error) {
	var u User
	var picture sql.NullString
	err := row.Scan(&u.ID, &u.Email, &u.Name, &picture, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apierrors.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.Picture = picture.String
	return &u, nil
}

// CreateSession persists a new session token for the user.
func (s *Store) CreateSession(ctx context.Context, token, userID string, expiresAt time.Time) (*Session, error) {
	session := &Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt.UTC(),
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, expires_at, created_at) VALUES (?, ?, ?, ?)`,
		session.Token, session.UserID, session.ExpiresAt, session.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return session, nil
}

// GetSession returns the session for token. Expired sessions are deleted on
// read and reported as ErrSessionExpired.
func (s *Store) GetSession(ctx context.Context, token string) (*Session, error) {
	var sess Session
	err := s.db.QueryRowContext(ctx,
		`SELECT token, user_id, expires_at, created_at FROM sessions WHERE token = ?`, token).
		Scan(&sess.Token, &sess.UserID, &sess.ExpiresAt, &sess.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apierrors.ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("scan session: %w", err)
	}

	if sess.Expired(time.Now().UTC()) {
		_ = s.DeleteSession(ctx, token)
		return nil, apierrors.ErrSessionExpired
	}
	return &sess, nil
}

// DeleteSession removes the session token.
func (s *Store) DeleteSession(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
