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

// SaveInsight replaces any prior insight for (dataset, user).
func (s *Store) SaveInsight(ctx context.Context, userID, datasetID string, content map[string]any) (*Insight, error) {
	insight := &Insight{
		ID:        NewID("ins"),
		DatasetID: datasetID,
		UserID:    userID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	contentJSON, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("encode insight: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO insights (id, dataset_id, user_id, content_json, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(dataset_id, user_id) DO UPDATE SET
			id = excluded.id,
			content_json = excluded.content_json,
			created_at = excluded.created_at`,
		insight.ID, insight.DatasetID, insight.UserID, string(contentJSON), insight.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("save insight: %w", err)
	}
	return insight, nil
}

// GetInsight returns the stored insight for the dataset.
func (s *Store) GetInsight(ctx context.Context, userID, datasetID string) (*Insight, error) {
	var insight Insight
	var contentJSON string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, dataset_id, user_id, content_json, created_at
		FROM insights WHERE dataset_id = ? AND user_id = ?`, datasetID, userID).
		Scan(&insight.ID, &insight.DatasetID, &insight.UserID, &contentJSON, &insight.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apierrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan insight: %w", err)
	}

	if err := json.Unmarshal([]byte(contentJSON), &insight.Content); err != nil {
		return nil, fmt.Errorf("decode insight: %w", err)
	}
	return &insight, nil
}
