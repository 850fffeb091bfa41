package services

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	apierrors "founderpulse/internal/errors"
	"founderpulse/internal/store"
)

// DashboardService assembles the landing-page overview.
type DashboardService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewDashboardService creates the dashboard service.
func NewDashboardService(st *store.Store, logger *slog.Logger) *DashboardService {
	return &DashboardService{
		store:  st,
		logger: logger.With(slog.String("component", "dashboard_service")),
	}
}

// Overview is the aggregated dashboard payload. LatestMetrics and
// LatestInsights belong to the newest dataset and are null until computed.
type Overview struct {
	Datasets         []*store.Dataset     `json:"datasets"`
	LatestMetrics    *store.MetricsRecord `json:"latest_metrics"`
	LatestInsights   *store.Insight       `json:"latest_insights"`
	RecentNarratives []*store.Narrative   `json:"recent_narratives"`
	TotalDatasets    int                  `json:"total_datasets"`
	TotalNarratives  int                  `json:"total_narratives"`
}

// Get fans out the overview queries concurrently and assembles the result.
func (s *DashboardService) Get(ctx context.Context, userID string) (*Overview, error) {
	overview := &Overview{}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		datasets, err := s.store.ListDatasets(gctx, userID)
		if err != nil {
			return err
		}
		overview.Datasets = datasets
		overview.TotalDatasets = len(datasets)

		if len(datasets) == 0 {
			return nil
		}
		latest := datasets[0].ID

		record, err := s.store.GetMetrics(gctx, userID, latest)
		if err != nil && !errors.Is(err, apierrors.ErrNotFound) {
			return err
		}
		overview.LatestMetrics = record

		insight, err := s.store.GetInsight(gctx, userID, latest)
		if err != nil && !errors.Is(err, apierrors.ErrNotFound) {
			return err
		}
		overview.LatestInsights = insight
		return nil
	})

	g.Go(func() error {
		narratives, err := s.store.ListNarratives(gctx, userID, 5)
		if err != nil {
			return err
		}
		overview.RecentNarratives = narratives
		return nil
	})

	g.Go(func() error {
		total, err := s.store.CountNarratives(gctx, userID)
		if err != nil {
			return err
		}
		overview.TotalNarratives = total
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return overview, nil
}
