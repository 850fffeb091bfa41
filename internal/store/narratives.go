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

// CreateNarrative persists a generated narrative.
func (s *Store) CreateNarrative(ctx context.Context, n *Narrative) (*Narrative, error) {
	n.ID = NewID("nar")
	n.CreatedAt = time.Now().UTC()
	if n.KeyHighlights == nil {
		n.KeyHighlights = []string{}
	}

	highlightsJSON, err := json.Marshal(n.KeyHighlights)
	if err != nil {
		return nil, fmt.Errorf("encode highlights: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO narratives (id, user_id, dataset_id, narrative_type, title, content, highlights_json, custom_context, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.UserID, n.DatasetID, n.Type, n.Title, n.Content, string(highlightsJSON), n.CustomContext, n.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert narrative: %w", err)
	}
	return n, nil
}

// GetNarrative returns one narrative by ID, scoped to the user.
func (s *Store) GetNarrative(ctx context.Context, userID, id string) (*Narrative, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, dataset_id, narrative_type, title, content, highlights_json, custom_context, created_at
		FROM narratives WHERE id = ? AND user_id = ?`, id, userID)

	n, err := scanNarrative(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apierrors.ErrNarrativeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan narrative: %w", err)
	}
	return n, nil
}

// ListNarratives returns the user's narratives newest first. limit <= 0
// means no limit.
func (s *Store) ListNarratives(ctx context.Context, userID string, limit int) ([]*Narrative, error) {
	query := `
		SELECT id, user_id, dataset_id, narrative_type, title, content, highlights_json, custom_context, created_at
		FROM narratives WHERE user_id = ? ORDER BY created_at DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query narratives: %w", err)
	}
	defer rows.Close()

	narratives := make([]*Narrative, 0)
	for rows.Next() {
		n, err := scanNarrative(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan narrative: %w", err)
		}
		narratives = append(narratives, n)
	}
	return narratives, rows.Err()
}

func scanNarrative(scan func(...any) error) (*Narrative, error) {
	var n Narrative
	var highlightsJSON string
	var custom sql.NullString

	if err := scan(&n.ID, &n.UserID, &n.DatasetID, &n.Type, &n.Title, &n.Content, &highlightsJSON, &custom, &n.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(highlightsJSON), &n.KeyHighlights); err != nil {
		return nil, fmt.Errorf("decode highlights: %w", err)
	}
	n.CustomContext = custom.String
	return &n, nil
}
