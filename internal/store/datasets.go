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

// CreateDataset persists an uploaded dataset. The ID and timestamp are
// assigned here.
func (s *Store) CreateDataset(ctx context.Context, d *Dataset) (*Dataset, error) {
	d.ID = NewID("ds")
	d.CreatedAt = time.Now().UTC()
	d.RowCount = len(d.Rows)

	columnsJSON, _ := json.Marshal(d.Columns)
	numericJSON, _ := json.Marshal(d.NumericColumns)
	rowsJSON, err := json.Marshal(d.Rows)
	if err != nil {
		return nil, fmt.Errorf("encode rows: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO datasets (id, user_id, filename, columns_json, numeric_columns_json, period_column, rows_json, row_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.UserID, d.Filename, string(columnsJSON), string(numericJSON),
		d.PeriodColumn, string(rowsJSON), d.RowCount, d.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert dataset: %w", err)
	}
	return d, nil
}

// GetDataset returns the full dataset including rows, scoped to the user.
func (s *Store) GetDataset(ctx context.Context, userID, id string) (*Dataset, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, filename, columns_json, numeric_columns_json, period_column, rows_json, row_count, created_at
		FROM datasets WHERE id = ? AND user_id = ?`, id, userID)
	return scanDataset(row, true)
}

// ListDatasets returns the user's datasets newest first, without row data.
func (s *Store) ListDatasets(ctx context.Context, userID string) ([]*Dataset, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, filename, columns_json, numeric_columns_json, period_column, row_count, created_at
		FROM datasets WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query datasets: %w", err)
	}
	defer rows.Close()

	datasets := make([]*Dataset, 0)
	for rows.Next() {
		var d Dataset
		var columnsJSON, numericJSON string
		var period sql.NullString
		if err := rows.Scan(&d.ID, &d.UserID, &d.Filename, &columnsJSON, &numericJSON, &period, &d.RowCount, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan dataset: %w", err)
		}
		json.Unmarshal([]byte(columnsJSON), &d.Columns)
		json.Unmarshal([]byte(numericJSON), &d.NumericColumns)
		d.PeriodColumn = period.String
		datasets = append(datasets, &d)
	}
	return datasets, rows.Err()
}

// DeleteDataset removes the dataset and its derived metrics and insights.
func (s *Store) DeleteDataset(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM datasets WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete dataset: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apierrors.ErrDatasetNotFound
	}

	_, _ = s.db.ExecContext(ctx, `DELETE FROM metrics_records WHERE dataset_id = ? AND user_id = ?`, id, userID)
	_, _ = s.db.ExecContext(ctx, `DELETE FROM insights WHERE dataset_id = ? AND user_id = ?`, id, userID)
	return nil
}

func scanDataset(row *sql.Row, withRows bool) (*Dataset, error) {
	var d Dataset
	var columnsJSON, numericJSON, rowsJSON string
	var period sql.NullString

	err := row.Scan(&d.ID, &d.UserID, &d.Filename, &columnsJSON, &numericJSON, &period, &rowsJSON, &d.RowCount, &d.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apierrors.ErrDatasetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan dataset: %w", err)
	}

	json.Unmarshal([]byte(columnsJSON), &d.Columns)
	json.Unmarshal([]byte(numericJSON), &d.NumericColumns)
	d.PeriodColumn = period.String
	if withRows {
		if err := json.Unmarshal([]byte(rowsJSON), &d.Rows); err != nil {
			return nil, fmt.Errorf("decode rows: %w", err)
		}
	}
	return &d, nil
}
