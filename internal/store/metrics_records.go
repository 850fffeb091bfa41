package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apierrors "founderpulse/internal/errors"
	"founderpulse/internal/metrics"
)

// SaveMetrics replaces any prior record for (dataset, user) and persists the
// engine result.
func (s *Store) SaveMetrics(ctx context.Context, userID, datasetID string, result metrics.Result) (*MetricsRecord, error) {
	record := &MetricsRecord{
		ID:         NewID("met"),
		DatasetID:  datasetID,
		UserID:     userID,
		Result:     result,
		ComputedAt: time.Now().UTC(),
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO metrics_records (id, dataset_id, user_id, result_json, computed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(dataset_id, user_id) DO UPDATE SET
			id = excluded.id,
			result_json = excluded.result_json,
			computed_at = excluded.computed_at`,
		record.ID, record.DatasetID, record.UserID, string(resultJSON), record.ComputedAt)
	if err != nil {
		return nil, fmt.Errorf("save metrics: %w", err)
	}
	return record, nil
}

// GetMetrics returns the last computed record for the dataset.
func (s *Store) GetMetrics(ctx context.Context, userID, datasetID string) (*MetricsRecord, error) {
	var record MetricsRecord
	var resultJSON string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, dataset_id, user_id, result_json, computed_at
		FROM metrics_records WHERE dataset_id = ? AND user_id = ?`, datasetID, userID).
		Scan(&record.ID, &record.DatasetID, &record.UserID, &resultJSON, &record.ComputedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apierrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan metrics: %w", err)
	}

	if err := json.Unmarshal([]byte(resultJSON), &record.Result); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return &record, nil
}
