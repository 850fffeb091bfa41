package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	apierrors "founderpulse/internal/errors"
	"founderpulse/internal/llm"
	"founderpulse/internal/store"
)

// Narrative types accepted by Generate.
const (
	NarrativeTractionStatement = "traction_statement"
	NarrativeVCEmail           = "vc_email"
	NarrativeExecutiveSummary  = "executive_summary"
	NarrativeMonthlyUpdate     = "monthly_update"
)

// narrativesListLimit caps the list endpoint's response.
const narrativesListLimit = 50

const writerSystemPrompt = "You are a startup communications expert. Always respond with valid JSON only."

var narrativeTypePrompts = map[string]string{
	NarrativeTractionStatement: "Generate a compelling one-line traction statement and a 3-4 sentence expansion that would make a VC want to take a meeting. Focus on the strongest growth signals.",
	NarrativeVCEmail:           "Generate a professional VC update email. Include: subject line, greeting, key highlights (3-4 bullet points with specific numbers), challenges being addressed, ask/next steps, and sign-off. Make it concise and data-driven.",
	NarrativeExecutiveSummary:  "Generate a structured executive summary suitable for a board meeting or investor deck. Include: headline, key metrics summary, growth analysis, efficiency analysis, risks & mitigations, and strategic outlook.",
	NarrativeMonthlyUpdate:     "Generate a monthly investor update. Include: headline with month context, top 3 wins (with numbers), key metrics table, challenges & learnings, next month priorities, and a funding/runway note.",
}

// NarrativeService turns computed metrics into investor-facing prose.
type NarrativeService struct {
	store  *store.Store
	llm    Completer
	logger *slog.Logger
}

// NewNarrativeService creates the narrative service.
func NewNarrativeService(st *store.Store, completer Completer, logger *slog.Logger) *NarrativeService {
	return &NarrativeService{
		store:  st,
		llm:    completer,
		logger: logger.With(slog.String("component", "narrative_service")),
	}
}

// narrativeDocument is the model's expected response shape.
type narrativeDocument struct {
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	Type          string   `json:"type"`
	KeyHighlights []string `json:"key_highlights"`
}

// Generate produces one narrative of the given type from the dataset's
// computed metrics, enriched by the stored insight when one exists. Metrics
// must have been computed first. Model failures are stored as an error
// document rather than failing the request.
func (s *NarrativeService) Generate(ctx context.Context, userID, datasetID, narrativeType, customContext string) (*store.Narrative, error) {
	if _, ok := narrativeTypePrompts[narrativeType]; !ok {
		return nil, apierrors.ErrValidation("narrative_type",
			"must be one of traction_statement, vc_email, executive_summary, monthly_update")
	}

	record, err := s.store.GetMetrics(ctx, userID, datasetID)
	if err != nil {
		return nil, fmt.Errorf("metrics not computed for dataset: %w", err)
	}

	// Insight is optional enrichment; its absence is not an error.
	insight, err := s.store.GetInsight(ctx, userID, datasetID)
	if err != nil && !errors.Is(err, apierrors.ErrNotFound) {
		return nil, err
	}

	doc, genErr := s.compose(ctx, record, insight, narrativeType, customContext)
	if genErr != nil {
		s.logger.WarnContext(ctx, "narrative generation degraded",
			"dataset_id", datasetID,
			"narrative_type", narrativeType,
			"error", genErr)
		doc = narrativeDocument{
			Title:         "Generation Error",
			Content:       "Unable to generate narrative: " + genErr.Error(),
			Type:          narrativeType,
			KeyHighlights: []string{},
		}
	}

	narrative, err := s.store.CreateNarrative(ctx, &store.Narrative{
		UserID:        userID,
		DatasetID:     datasetID,
		Type:          narrativeType,
		Title:         doc.Title,
		Content:       doc.Content,
		KeyHighlights: doc.KeyHighlights,
		CustomContext: customContext,
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "narrative generated",
		"narrative_id", narrative.ID,
		"dataset_id", datasetID,
		"narrative_type", narrativeType,
		"degraded", genErr != nil)
	return narrative, nil
}

// List returns the user's most recent narratives, capped at 50.
func (s *NarrativeService) List(ctx context.Context, userID string) ([]*store.Narrative, error) {
	return s.store.ListNarratives(ctx, userID, narrativesListLimit)
}

// Get returns one narrative by ID.
func (s *NarrativeService) Get(ctx context.Context, userID, id string) (*store.Narrative, error) {
	return s.store.GetNarrative(ctx, userID, id)
}

func (s *NarrativeService) compose(ctx context.Context, record *store.MetricsRecord, insight *store.Insight, narrativeType, customContext string) (narrativeDocument, error) {
	detail, err := json.MarshalIndent(record.Detail, "", "  ")
	if err != nil {
		return narrativeDocument{}, fmt.Errorf("encode metrics detail: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, `You are an elite startup communications strategist. Generate investor-grade content.

%s

METRICS DATA:
- Growth Score: %.2f/100
- Efficiency Score: %.2f/100
- PMF Signal: %.2f/100
- Scalability Index: %.2f/100
- Capital Efficiency: %.2f/100

DETAILED METRICS:
%s
`,
		narrativeTypePrompts[narrativeType],
		record.GrowthScore,
		record.EfficiencyScore,
		record.PMFSignal,
		record.ScalabilityIndex,
		record.CapitalEfficiency,
		string(detail))

	if insight != nil {
		if raw, ok := insight.Content["strategic_insights"]; ok {
			if encoded, err := json.MarshalIndent(raw, "", "  "); err == nil {
				fmt.Fprintf(&b, "\nAI INSIGHTS: %s\n", string(encoded))
			}
		}
		if assessment, ok := insight.Content["overall_assessment"].(string); ok && assessment != "" {
			fmt.Fprintf(&b, "OVERALL ASSESSMENT: %s\n", assessment)
		}
	}
	if customContext != "" {
		fmt.Fprintf(&b, "ADDITIONAL CONTEXT: %s\n", customContext)
	}

	fmt.Fprintf(&b, `
Return your response in this EXACT JSON format (no markdown, just raw JSON):
{
  "title": "Title of this narrative",
  "content": "The full formatted narrative text (use markdown formatting)",
  "type": %q,
  "key_highlights": ["highlight 1", "highlight 2", "highlight 3"]
}`, narrativeType)

	raw, err := s.llm.Complete(ctx, []llm.Message{
		{Role: "system", Content: writerSystemPrompt},
		{Role: "user", Content: b.String()},
	})
	if err != nil {
		return narrativeDocument{}, err
	}

	var doc narrativeDocument
	if err := json.Unmarshal([]byte(llm.ExtractJSON(raw)), &doc); err != nil {
		return narrativeDocument{}, fmt.Errorf("parse model response: %w", err)
	}
	if doc.Type == "" {
		doc.Type = narrativeType
	}
	if doc.KeyHighlights == nil {
		doc.KeyHighlights = []string{}
	}
	return doc, nil
}
