package services

import (
	"context"
	"log/slog"

	"founderpulse/internal/metrics"
	"founderpulse/internal/store"
	"founderpulse/internal/websocket"
)

// MetricsService runs the derivation engine over stored datasets.
type MetricsService struct {
	store  *store.Store
	engine *metrics.Engine
	hub    Broadcaster
	logger *slog.Logger
}

// NewMetricsService creates the metrics service.
func NewMetricsService(st *store.Store, engine *metrics.Engine, hub Broadcaster, logger *slog.Logger) *MetricsService {
	return &MetricsService{
		store:  st,
		engine: engine,
		hub:    hub,
		logger: logger.With(slog.String("component", "metrics_service")),
	}
}

// Compute loads the dataset, runs the engine and persists the result,
// replacing any prior record for the dataset. Connected clients are
// notified.
func (s *MetricsService) Compute(ctx context.Context, userID, datasetID string) (*store.MetricsRecord, error) {
	ds, err := s.store.GetDataset(ctx, userID, datasetID)
	if err != nil {
		return nil, err
	}

	rows := make([]metrics.Row, len(ds.Rows))
	for i, r := range ds.Rows {
		rows[i] = metrics.Row(r)
	}

	result := s.engine.Compute(ctx, rows, ds.NumericColumns)

	record, err := s.store.SaveMetrics(ctx, userID, datasetID, result)
	if err != nil {
		return nil, err
	}

	s.hub.Broadcast(websocket.TypeMetricsComputed, map[string]any{
		"dataset_id":   datasetID,
		"metrics_id":   record.ID,
		"growth_score": record.GrowthScore,
	})

	s.logger.InfoContext(ctx, "metrics computed",
		"dataset_id", datasetID,
		"metrics_id", record.ID)
	return record, nil
}

// Get returns the last computed record for the dataset.
func (s *MetricsService) Get(ctx context.Context, userID, datasetID string) (*store.MetricsRecord, error) {
	return s.store.GetMetrics(ctx, userID, datasetID)
}
