package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"founderpulse/internal/llm"
	"founderpulse/internal/store"
	"founderpulse/internal/websocket"
)

const analystSystemPrompt = "You are a world-class startup analyst. Always respond with valid JSON only."

// InsightService generates strategic analyses from computed metrics.
type InsightService struct {
	store  *store.Store
	llm    Completer
	hub    Broadcaster
	logger *slog.Logger
}

// NewInsightService creates the insight service.
func NewInsightService(st *store.Store, completer Completer, hub Broadcaster, logger *slog.Logger) *InsightService {
	return &InsightService{
		store:  st,
		llm:    completer,
		hub:    hub,
		logger: logger.With(slog.String("component", "insight_service")),
	}
}

// Generate asks the model for a strategic analysis of the dataset's computed
// metrics and persists it, replacing any prior insight. Metrics must have
// been computed first. Model or parse failures do not fail the request; an
// error envelope is stored instead so the client always gets a document.
func (s *InsightService) Generate(ctx context.Context, userID, datasetID string) (*store.Insight, error) {
	ds, err := s.store.GetDataset(ctx, userID, datasetID)
	if err != nil {
		return nil, err
	}
	record, err := s.store.GetMetrics(ctx, userID, datasetID)
	if err != nil {
		return nil, fmt.Errorf("metrics not computed for dataset: %w", err)
	}

	content, genErr := s.analyze(ctx, ds, record)
	if genErr != nil {
		s.logger.WarnContext(ctx, "insight generation degraded",
			"dataset_id", datasetID,
			"error", genErr)
		content = insightFallback(genErr)
	}

	insight, err := s.store.SaveInsight(ctx, userID, datasetID, content)
	if err != nil {
		return nil, err
	}

	s.hub.Broadcast(websocket.TypeInsightReady, map[string]any{
		"dataset_id": datasetID,
		"insight_id": insight.ID,
	})

	s.logger.InfoContext(ctx, "insight generated",
		"dataset_id", datasetID,
		"insight_id", insight.ID,
		"model", s.llm.Model(),
		"degraded", genErr != nil)
	return insight, nil
}

// Get returns the stored insight for the dataset.
func (s *InsightService) Get(ctx context.Context, userID, datasetID string) (*store.Insight, error) {
	return s.store.GetInsight(ctx, userID, datasetID)
}

func (s *InsightService) analyze(ctx context.Context, ds *store.Dataset, record *store.MetricsRecord) (map[string]any, error) {
	detail, err := json.MarshalIndent(record.Detail, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode metrics detail: %w", err)
	}

	prompt := fmt.Sprintf(`You are a strategic startup analyst. Analyze this startup's metrics and provide actionable insights.

Dataset: %s
Columns: %s

COMPOSITE SCORES (0-100):
- Growth Score: %.2f
- Efficiency Score: %.2f
- PMF Signal: %.2f
- Scalability Index: %.2f
- Capital Efficiency: %.2f

DETAILED METRICS:
%s

Provide your analysis in EXACTLY this JSON format:
{
  "strategic_insights": [
    {"title": "...", "description": "...", "impact": "high|medium|low", "category": "growth|efficiency|pmf|scalability|capital"}
  ],
  "red_flags": [
    {"title": "...", "description": "...", "severity": "critical|warning|minor"}
  ],
  "opportunities": [
    {"title": "...", "description": "...", "potential_impact": "...", "priority": "high|medium|low"}
  ],
  "overall_assessment": "2-3 sentence summary of the startup's position"
}

Provide 3-5 strategic insights, identify any red flags, and highlight 2-4 opportunities. Respond with ONLY the JSON.`,
		ds.Filename,
		strings.Join(ds.Columns, ", "),
		record.GrowthScore,
		record.EfficiencyScore,
		record.PMFSignal,
		record.ScalabilityIndex,
		record.CapitalEfficiency,
		string(detail))

	raw, err := s.llm.Complete(ctx, []llm.Message{
		{Role: "system", Content: analystSystemPrompt},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return nil, err
	}

	var content map[string]any
	if err := json.Unmarshal([]byte(llm.ExtractJSON(raw)), &content); err != nil {
		return nil, fmt.Errorf("parse model response: %w", err)
	}
	return content, nil
}

// insightFallback is the stored document when the model cannot be reached or
// returns unparseable output.
func insightFallback(err error) map[string]any {
	return map[string]any{
		"strategic_insights": []any{
			map[string]any{
				"title":       "Analysis Error",
				"description": err.Error(),
				"impact":      "high",
				"category":    "growth",
			},
		},
		"red_flags":          []any{},
		"opportunities":      []any{},
		"overall_assessment": "Unable to generate full analysis. Please try again.",
	}
}
