package services

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"founderpulse/internal/llm"
	"founderpulse/internal/metrics"
	"founderpulse/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func createTestUser(t *testing.T, st *store.Store) *store.User {
	t.Helper()
	user, err := st.UpsertUserByEmail(context.Background(), "founder@example.com", "Founder", "")
	require.NoError(t, err)
	return user
}

func uploadTestDataset(t *testing.T, st *store.Store, userID string) *store.Dataset {
	t.Helper()
	svc := NewDataService(st, testLogger())
	csv := strings.NewReader("month,revenue,burn\nJan,100,50\nFeb,150,60\nMar,210,70\n")
	ds, err := svc.Upload(context.Background(), userID, "metrics.csv", csv)
	require.NoError(t, err)
	return ds
}

// fakeCompleter returns a canned response, or an error when set.
type fakeCompleter struct {
	response string
	err      error
	prompts  []llm.Message
}

func (f *fakeCompleter) Complete(_ context.Context, messages []llm.Message) (string, error) {
	f.prompts = append(f.prompts, messages...)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeCompleter) Model() string { return "fake-model" }

// fakeHub records broadcast events.
type fakeHub struct {
	events []string
}

func (f *fakeHub) Broadcast(eventType string, _ any) {
	f.events = append(f.events, eventType)
}

// fakeSender records deliveries and can fail specific addresses.
type fakeSender struct {
	failFor map[string]bool
	sent    []string
}

func (f *fakeSender) Send(_ context.Context, to, _, _ string) (string, error) {
	if f.failFor[to] {
		return "", errSendRejected
	}
	f.sent = append(f.sent, to)
	return "email_test", nil
}

var errSendRejected = &sendError{"rejected by provider"}

type sendError struct{ msg string }

func (e *sendError) Error() string { return e.msg }

func computeTestMetrics(t *testing.T, st *store.Store, userID, datasetID string) *store.MetricsRecord {
	t.Helper()
	svc := NewMetricsService(st, metrics.NewEngine(testLogger()), &fakeHub{}, testLogger())
	record, err := svc.Compute(context.Background(), userID, datasetID)
	require.NoError(t, err)
	return record
}
