package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const digestReply = `{
  "summary": "Shipped the new onboarding flow and closed two pilots.",
  "key_themes": ["product velocity", "pilot traction"],
  "momentum_signal": "positive",
  "suggested_metrics_to_track": ["activation rate"],
  "recommended_update_for_investors": "We shipped onboarding v2 and signed two pilot customers.",
  "action_items": ["follow up with pilot feedback"],
  "trend_observations": [
    {"observation": "pilots converting fast", "implication": "PMF strengthening", "priority": "high"}
  ]
}`

func TestUpdateLifecycle(t *testing.T) {
	st := newTestStore(t)
	user := createTestUser(t, st)
	svc := NewUpdateService(st, &fakeCompleter{response: digestReply}, testLogger())

	created, err := svc.Create(context.Background(), user.ID, "Closed pilot with Acme", []string{"sales"}, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	got, err := svc.Get(context.Background(), user.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Closed pilot with Acme", got.Content)

	list, err := svc.List(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, svc.Delete(context.Background(), user.ID, created.ID))
	_, err = svc.Get(context.Background(), user.ID, created.ID)
	require.Error(t, err)
}

func TestCreateUpdateRejectsEmptyContent(t *testing.T) {
	st := newTestStore(t)
	user := createTestUser(t, st)
	svc := NewUpdateService(st, &fakeCompleter{}, testLogger())

	_, err := svc.Create(context.Background(), user.ID, "   ", nil, nil)
	require.Error(t, err)
}

func TestAnalyzeDigestsRecentUpdates(t *testing.T) {
	st := newTestStore(t)
	user := createTestUser(t, st)

	completer := &fakeCompleter{response: digestReply}
	svc := NewUpdateService(st, completer, testLogger())

	_, err := svc.Create(context.Background(), user.ID, "Closed pilot with Acme", []string{"sales"}, nil)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), user.ID, "Shipped onboarding v2", []string{"product"}, nil)
	require.NoError(t, err)

	analysis, err := svc.Analyze(context.Background(), user.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 2, analysis.UpdatesCount)
	assert.Equal(t, 7, analysis.PeriodDays)
	assert.Equal(t, "positive", analysis.Analysis["momentum_signal"])

	require.Len(t, completer.prompts, 2)
	assert.Contains(t, completer.prompts[1].Content, "Closed pilot with Acme")
	assert.Contains(t, completer.prompts[1].Content, "(tags: sales)")
}

func TestAnalyzeEmptyPeriod(t *testing.T) {
	st := newTestStore(t)
	user := createTestUser(t, st)
	svc := NewUpdateService(st, &fakeCompleter{response: digestReply}, testLogger())

	_, err := svc.Analyze(context.Background(), user.ID, 7)
	require.Error(t, err)
}

func TestAnalyzeFallsBackOnModelError(t *testing.T) {
	st := newTestStore(t)
	user := createTestUser(t, st)
	svc := NewUpdateService(st, &fakeCompleter{err: errors.New("upstream timeout")}, testLogger())

	_, err := svc.Create(context.Background(), user.ID, "Weekly note", nil, nil)
	require.NoError(t, err)

	analysis, err := svc.Analyze(context.Background(), user.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, "neutral", analysis.Analysis["momentum_signal"])
	assert.Contains(t, analysis.Analysis["summary"], "Analysis error")
}
