package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"founderpulse/internal/websocket"
)

const analysisReply = "```json\n" + `{
  "strategic_insights": [
    {"title": "Strong revenue momentum", "description": "Revenue grew every period.", "impact": "high", "category": "growth"}
  ],
  "red_flags": [],
  "opportunities": [
    {"title": "Improve burn multiple", "description": "Burn grows slower than revenue.", "potential_impact": "extended runway", "priority": "medium"}
  ],
  "overall_assessment": "Healthy early-stage trajectory."
}` + "\n```"

func TestGenerateInsightStoresParsedAnalysis(t *testing.T) {
	st := newTestStore(t)
	user := createTestUser(t, st)
	ds := uploadTestDataset(t, st, user.ID)
	computeTestMetrics(t, st, user.ID, ds.ID)

	completer := &fakeCompleter{response: analysisReply}
	hub := &fakeHub{}
	svc := NewInsightService(st, completer, hub, testLogger())

	insight, err := svc.Generate(context.Background(), user.ID, ds.ID)
	require.NoError(t, err)
	assert.Equal(t, "Healthy early-stage trajectory.", insight.Content["overall_assessment"])
	assert.Contains(t, hub.events, websocket.TypeInsightReady)

	// The prompt must carry the dataset's shape and scores.
	require.Len(t, completer.prompts, 2)
	assert.Contains(t, completer.prompts[1].Content, "metrics.csv")
	assert.Contains(t, completer.prompts[1].Content, "Growth Score")

	stored, err := svc.Get(context.Background(), user.ID, ds.ID)
	require.NoError(t, err)
	assert.Equal(t, insight.ID, stored.ID)
}

func TestGenerateInsightRequiresMetrics(t *testing.T) {
	st := newTestStore(t)
	user := createTestUser(t, st)
	ds := uploadTestDataset(t, st, user.ID)

	svc := NewInsightService(st, &fakeCompleter{response: analysisReply}, &fakeHub{}, testLogger())

	_, err := svc.Generate(context.Background(), user.ID, ds.ID)
	require.Error(t, err)
}

func TestGenerateInsightFallsBackOnModelError(t *testing.T) {
	st := newTestStore(t)
	user := createTestUser(t, st)
	ds := uploadTestDataset(t, st, user.ID)
	computeTestMetrics(t, st, user.ID, ds.ID)

	completer := &fakeCompleter{err: errors.New("upstream timeout")}
	svc := NewInsightService(st, completer, &fakeHub{}, testLogger())

	insight, err := svc.Generate(context.Background(), user.ID, ds.ID)
	require.NoError(t, err)
	assert.Equal(t, "Unable to generate full analysis. Please try again.", insight.Content["overall_assessment"])

	list, ok := insight.Content["strategic_insights"].([]any)
	require.True(t, ok)
	require.Len(t, list, 1)
	entry := list[0].(map[string]any)
	assert.Equal(t, "Analysis Error", entry["title"])
}

func TestGenerateInsightFallsBackOnBadJSON(t *testing.T) {
	st := newTestStore(t)
	user := createTestUser(t, st)
	ds := uploadTestDataset(t, st, user.ID)
	computeTestMetrics(t, st, user.ID, ds.ID)

	completer := &fakeCompleter{response: "I cannot answer in JSON today."}
	svc := NewInsightService(st, completer, &fakeHub{}, testLogger())

	insight, err := svc.Generate(context.Background(), user.ID, ds.ID)
	require.NoError(t, err)
	assert.Equal(t, "Unable to generate full analysis. Please try again.", insight.Content["overall_assessment"])
}
