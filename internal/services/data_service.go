package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"founderpulse/internal/dataset"
	apierrors "founderpulse/internal/errors"
	"founderpulse/internal/store"
)

// DataService handles dataset ingestion and access.
type DataService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewDataService creates the data service.
func NewDataService(st *store.Store, logger *slog.Logger) *DataService {
	return &DataService{
		store:  st,
		logger: logger.With(slog.String("component", "data_service")),
	}
}

// Upload parses the file and persists it as a dataset for the user. A file
// that cannot be parsed into a table at all maps to the malformed-upload
// problem; a parseable but empty table is stored as-is and yields the
// engine's defined zero result later.
func (s *DataService) Upload(ctx context.Context, userID, filename string, r io.Reader) (*store.Dataset, error) {
	parsed, err := dataset.Parse(filename, r)
	if err != nil {
		if errors.Is(err, dataset.ErrMalformedFile) {
			return nil, fmt.Errorf("%w: %v", apierrors.ErrMalformedUpload, err)
		}
		return nil, err
	}

	ds, err := s.store.CreateDataset(ctx, &store.Dataset{
		UserID:         userID,
		Filename:       filename,
		Columns:        parsed.Columns,
		NumericColumns: parsed.NumericColumns,
		PeriodColumn:   parsed.PeriodColumn,
		Rows:           parsed.Rows,
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "dataset uploaded",
		"dataset_id", ds.ID,
		"filename", filename,
		"rows", ds.RowCount,
		"numeric_columns", len(ds.NumericColumns))
	return ds, nil
}

// List returns the user's datasets without row data.
func (s *DataService) List(ctx context.Context, userID string) ([]*store.Dataset, error) {
	return s.store.ListDatasets(ctx, userID)
}

// Get returns the full dataset.
func (s *DataService) Get(ctx context.Context, userID, id string) (*store.Dataset, error) {
	return s.store.GetDataset(ctx, userID, id)
}

// Delete removes the dataset and its derived records.
func (s *DataService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteDataset(ctx, userID, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "dataset deleted", "dataset_id", id)
	return nil
}
