package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apierrors "founderpulse/internal/errors"
)

// CreateUpdate persists a journal entry.
func (s *Store) CreateUpdate(ctx context.Context, u *Update) (*Update, error) {
	u.ID = NewID("up")
	u.CreatedAt = time.Now().UTC()
	if u.Tags == nil {
		u.Tags = []string{}
	}

	tagsJSON, _ := json.Marshal(u.Tags)
	imagesJSON, _ := json.Marshal(u.Images)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO updates (id, user_id, content, tags_json, images_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.UserID, u.Content, string(tagsJSON), string(imagesJSON), u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert update: %w", err)
	}
	return u, nil
}

// GetUpdate returns one journal entry by ID, scoped to the user.
func (s *Store) GetUpdate(ctx context.Context, userID, id string) (*Update, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, content, tags_json, images_json, created_at
		FROM updates WHERE id = ? AND user_id = ?`, id, userID)

	u, err := scanUpdate(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apierrors.ErrUpdateNotFound
	}
	return u, err
}

// ListUpdates returns the user's entries newest first. A non-zero since
// restricts to entries created at or after it.
func (s *Store) ListUpdates(ctx context.Context, userID string, since time.Time) ([]*Update, error) {
	query := `
		SELECT id, user_id, content, tags_json, images_json, created_at
		FROM updates WHERE user_id = ?`
	args := []any{userID}
	if !since.IsZero() {
		query += ` AND created_at >= ?`
		args = append(args, since.UTC())
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query updates: %w", err)
	}
	defer rows.Close()

	updates := make([]*Update, 0)
	for rows.Next() {
		u, err := scanUpdate(rows.Scan)
		if err != nil {
			return nil, err
		}
		updates = append(updates, u)
	}
	return updates, rows.Err()
}

// DeleteUpdate removes one journal entry.
func (s *Store) DeleteUpdate(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM updates WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apierrors.ErrUpdateNotFound
	}
	return nil
}

func scanUpdate(scan func(dest ...any) error) (*Update, error) {
	var u Update
	var tagsJSON, imagesJSON string
	if err := scan(&u.ID, &u.UserID, &u.Content, &tagsJSON, &imagesJSON, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan update: %w", err)
	}
	json.Unmarshal([]byte(tagsJSON), &u.Tags)
	json.Unmarshal([]byte(imagesJSON), &u.Images)
	if u.Tags == nil {
		u.Tags = []string{}
	}
	return &u, nil
}
