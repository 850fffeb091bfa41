package services

import (
	"context"
	"log/slog"
	"time"

	"founderpulse/internal/store"
)

// HealthService reports liveness and storage reachability.
type HealthService struct {
	store   *store.Store
	logger  *slog.Logger
	started time.Time
}

// NewHealthService creates the health service.
func NewHealthService(st *store.Store, logger *slog.Logger) *HealthService {
	return &HealthService{
		store:   st,
		logger:  logger.With(slog.String("component", "health_service")),
		started: time.Now().UTC(),
	}
}

// HealthStatus is the health endpoint payload.
type HealthStatus struct {
	Status        string `json:"status"`
	Service       string `json:"service"`
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Database      string `json:"database"`
}

// Check returns ok when the database is reachable, degraded otherwise.
func (s *HealthService) Check(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Status:        "ok",
		Service:       "Founder Intelligence Platform",
		Version:       "1.0.0",
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
		Database:      "up",
	}
	if err := s.store.Ping(); err != nil {
		s.logger.WarnContext(ctx, "database ping failed", "error", err)
		status.Status = "degraded"
		status.Database = "down"
	}
	return status
}
