package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	apierrors "founderpulse/internal/errors"
	"founderpulse/internal/llm"
	"founderpulse/internal/store"
)

const advisorSystemPrompt = "You are a startup strategic advisor. Always respond with valid JSON only."

// UpdateService manages the founder journal and its periodic AI digests.
type UpdateService struct {
	store  *store.Store
	llm    Completer
	logger *slog.Logger
}

// NewUpdateService creates the update service.
func NewUpdateService(st *store.Store, completer Completer, logger *slog.Logger) *UpdateService {
	return &UpdateService{
		store:  st,
		llm:    completer,
		logger: logger.With(slog.String("component", "update_service")),
	}
}

// Create records one journal entry.
func (s *UpdateService) Create(ctx context.Context, userID, content string, tags, images []string) (*store.Update, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apierrors.ErrValidation("content", "must not be empty")
	}
	return s.store.CreateUpdate(ctx, &store.Update{
		UserID:  userID,
		Content: content,
		Tags:    tags,
		Images:  images,
	})
}

// List returns the user's journal entries newest first.
func (s *UpdateService) List(ctx context.Context, userID string) ([]*store.Update, error) {
	return s.store.ListUpdates(ctx, userID, time.Time{})
}

// Get returns one entry by ID.
func (s *UpdateService) Get(ctx context.Context, userID, id string) (*store.Update, error) {
	return s.store.GetUpdate(ctx, userID, id)
}

// Delete removes one entry.
func (s *UpdateService) Delete(ctx context.Context, userID, id string) error {
	return s.store.DeleteUpdate(ctx, userID, id)
}

// UpdateAnalysis is the digest of a journal window. It is returned to the
// caller but never persisted.
type UpdateAnalysis struct {
	Analysis     map[string]any `json:"analysis"`
	UpdatesCount int            `json:"updates_analyzed"`
	PeriodDays   int            `json:"period_days"`
	AnalyzedAt   time.Time      `json:"analyzed_at"`
}

// Analyze digests the journal entries of the last days into themes, momentum
// and action items, using the newest dataset's metrics as context when
// available. No entries in the window is a not-found condition.
func (s *UpdateService) Analyze(ctx context.Context, userID string, days int) (*UpdateAnalysis, error) {
	if days <= 0 {
		days = 7
	}
	since := time.Now().UTC().AddDate(0, 0, -days)

	updates, err := s.store.ListUpdates(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("no updates in this period: %w", apierrors.ErrUpdateNotFound)
	}

	record := s.latestMetrics(ctx, userID)

	analysis, genErr := s.digest(ctx, updates, record, days)
	if genErr != nil {
		s.logger.WarnContext(ctx, "update analysis degraded", "error", genErr)
		analysis = map[string]any{
			"summary":                          "Analysis error: " + genErr.Error(),
			"key_themes":                       []any{},
			"momentum_signal":                  "neutral",
			"suggested_metrics_to_track":       []any{},
			"recommended_update_for_investors": "",
			"action_items":                     []any{},
			"trend_observations":               []any{},
		}
	}

	return &UpdateAnalysis{
		Analysis:     analysis,
		UpdatesCount: len(updates),
		PeriodDays:   days,
		AnalyzedAt:   time.Now().UTC(),
	}, nil
}

// latestMetrics returns the newest dataset's metrics, or nil when the user
// has no computed metrics yet.
func (s *UpdateService) latestMetrics(ctx context.Context, userID string) *store.MetricsRecord {
	datasets, err := s.store.ListDatasets(ctx, userID)
	if err != nil || len(datasets) == 0 {
		return nil
	}
	record, err := s.store.GetMetrics(ctx, userID, datasets[0].ID)
	if err != nil {
		if !errors.Is(err, apierrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "latest metrics lookup failed", "error", err)
		}
		return nil
	}
	return record
}

func (s *UpdateService) digest(ctx context.Context, updates []*store.Update, record *store.MetricsRecord, days int) (map[string]any, error) {
	entries := make([]string, len(updates))
	for i, u := range updates {
		line := fmt.Sprintf("[%s] %s", u.CreatedAt.Format("2006-01-02"), u.Content)
		if len(u.Tags) > 0 {
			line += fmt.Sprintf(" (tags: %s)", strings.Join(u.Tags, ", "))
		}
		entries[i] = line
	}

	metricsContext := ""
	if record != nil {
		metricsContext = fmt.Sprintf(`
CURRENT METRICS:
- Growth Score: %.2f/100
- Efficiency Score: %.2f/100
- PMF Signal: %.2f/100
- Scalability Index: %.2f/100
- Capital Efficiency: %.2f/100
`,
			record.GrowthScore,
			record.EfficiencyScore,
			record.PMFSignal,
			record.ScalabilityIndex,
			record.CapitalEfficiency)
	}

	prompt := fmt.Sprintf(`You are a strategic startup advisor analyzing a founder's recent journal entries/updates.

FOUNDER UPDATES (%d entries from last %d days):
%s

%s

Analyze these updates and provide a comprehensive summary. Return EXACT JSON (no markdown):
{
  "summary": "2-3 sentence overview of what's been happening",
  "key_themes": ["theme1", "theme2", "theme3"],
  "momentum_signal": "positive|neutral|negative",
  "suggested_metrics_to_track": ["metric1", "metric2"],
  "recommended_update_for_investors": "A polished 3-4 sentence investor-ready update based on these journal entries",
  "action_items": ["action1", "action2", "action3"],
  "trend_observations": [
    {"observation": "...", "implication": "...", "priority": "high|medium|low"}
  ]
}

Be specific, reference actual details from the updates. Think like a VC-advisor hybrid.`,
		len(updates), days, strings.Join(entries, "\n\n"), metricsContext)

	raw, err := s.llm.Complete(ctx, []llm.Message{
		{Role: "system", Content: advisorSystemPrompt},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return nil, err
	}

	var analysis map[string]any
	if err := json.Unmarshal([]byte(llm.ExtractJSON(raw)), &analysis); err != nil {
		return nil, fmt.Errorf("parse model response: %w", err)
	}
	return analysis, nil
}
