package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"founderpulse/internal/config"
	"founderpulse/internal/llm"
	"founderpulse/internal/metrics"
	"founderpulse/internal/middleware"
	"founderpulse/internal/services"
	"founderpulse/internal/store"
)

const testAnalysisReply = `{
  "strategic_insights": [
    {"title": "Strong momentum", "description": "Revenue compounding.", "impact": "high", "category": "growth"}
  ],
  "red_flags": [],
  "opportunities": [],
  "overall_assessment": "Healthy trajectory."
}`

const testNarrativeReply = `{
  "title": "Q1 Traction",
  "content": "Revenue doubled while burn stayed flat.",
  "type": "traction_statement",
  "key_highlights": ["2x growth"]
}`

type stubCompleter struct{ response string }

func (s *stubCompleter) Complete(_ context.Context, _ []llm.Message) (string, error) {
	return s.response, nil
}
func (s *stubCompleter) Model() string { return "stub-model" }

type stubSender struct{ sent int }

func (s *stubSender) Send(_ context.Context, _, _, _ string) (string, error) {
	s.sent++
	return "email_stub", nil
}

type testEnv struct {
	router  http.Handler
	store   *store.Store
	user    *store.User
	token   string
	insight *stubCompleter
	sender  *stubSender
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	user, err := st.UpsertUserByEmail(context.Background(), "founder@example.com", "Founder", "")
	require.NoError(t, err)
	token := "tok_" + store.NewID("test")
	_, err = st.CreateSession(context.Background(), token, user.ID, time.Now().Add(time.Hour))
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Security.RateLimit.Enabled = false

	completer := &stubCompleter{response: testAnalysisReply}
	sender := &stubSender{}
	engine := metrics.NewEngine(logger)

	svcs := Services{
		Auth:      services.NewAuthService(st, cfg.Auth, logger),
		Data:      services.NewDataService(st, logger),
		Metrics:   services.NewMetricsService(st, engine, noopHub{}, logger),
		Insight:   services.NewInsightService(st, completer, noopHub{}, logger),
		Narrative: services.NewNarrativeService(st, completer, logger),
		Update:    services.NewUpdateService(st, completer, logger),
		Contact:   services.NewContactService(st, logger),
		Email:     services.NewEmailService(st, sender, logger),
		Dashboard: services.NewDashboardService(st, logger),
		Health:    services.NewHealthService(st, logger),
	}

	router := NewRouter(RouterDeps{
		Config:   &cfg,
		Logger:   logger,
		Store:    st,
		Services: svcs,
	})

	return &testEnv{router: router, store: st, user: user, token: token, insight: completer, sender: sender}
}

type noopHub struct{}

func (noopHub) Broadcast(string, any) {}

func (e *testEnv) do(t *testing.T, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: e.token})
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) doJSON(t *testing.T, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}
	return e.do(t, method, path, body, "application/json")
}

func (e *testEnv) uploadCSV(t *testing.T, path, filename, csv string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(csv))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return e.do(t, http.MethodPost, path, &buf, mw.FormDataContentType())
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthIsPublic(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "Founder Intelligence Platform", body["service"])
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/data/datasets", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")
}

func TestUploadComputeInsightFlow(t *testing.T) {
	env := newTestEnv(t)

	rec := env.uploadCSV(t, "/api/data/upload", "saas.csv",
		"month,revenue,burn\nJan,100,80\nFeb,150,85\nMar,220,90\n")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	upload := decodeBody(t, rec)
	datasetID := upload["id"].(string)
	assert.Equal(t, float64(3), upload["row_count"])
	assert.Nil(t, upload["rows"])

	rec = env.doJSON(t, http.MethodPost, "/api/metrics/compute/"+datasetID, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	computed := decodeBody(t, rec)
	assert.Equal(t, datasetID, computed["dataset_id"])
	assert.Contains(t, computed, "growth_score")
	assert.Contains(t, computed, "metrics_detail")

	rec = env.doJSON(t, http.MethodGet, "/api/metrics/"+datasetID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.doJSON(t, http.MethodPost, "/api/insights/generate/"+datasetID, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	insight := decodeBody(t, rec)
	content := insight["insights"].(map[string]any)
	assert.Equal(t, "Healthy trajectory.", content["overall_assessment"])

	rec = env.doJSON(t, http.MethodGet, "/api/insights/"+datasetID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsComputeUnknownDataset(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(t, http.MethodPost, "/api/metrics/compute/ds_missing", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")
}

func TestNarrativeGenerateAndList(t *testing.T) {
	env := newTestEnv(t)

	rec := env.uploadCSV(t, "/api/data/upload", "saas.csv",
		"month,revenue\nJan,100\nFeb,150\n")
	require.Equal(t, http.StatusCreated, rec.Code)
	datasetID := decodeBody(t, rec)["id"].(string)

	rec = env.doJSON(t, http.MethodPost, "/api/metrics/compute/"+datasetID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	env.insight.response = testNarrativeReply
	rec = env.doJSON(t, http.MethodPost, "/api/narrative/generate", map[string]any{
		"dataset_id":     datasetID,
		"narrative_type": "traction_statement",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	narrative := decodeBody(t, rec)
	assert.Equal(t, "Q1 Traction", narrative["title"])
	narrativeID := narrative["id"].(string)

	rec = env.doJSON(t, http.MethodGet, "/api/narratives", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)

	rec = env.doJSON(t, http.MethodGet, "/api/narratives/"+narrativeID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.doJSON(t, http.MethodGet, "/api/narratives/nar_missing", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestContactEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(t, http.MethodPost, "/api/contacts", map[string]any{
		"name":  "Ada Investor",
		"email": "ada@fund.vc",
		"tags":  []string{"investor"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	contactID := decodeBody(t, rec)["id"].(string)

	// Duplicate email conflicts.
	rec = env.doJSON(t, http.MethodPost, "/api/contacts", map[string]any{
		"name":  "Ada Again",
		"email": "ada@fund.vc",
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = env.doJSON(t, http.MethodPut, "/api/contacts/"+contactID, map[string]any{
		"company": "Fund Capital",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Fund Capital", decodeBody(t, rec)["company"])

	rec = env.doJSON(t, http.MethodGet, "/api/contacts?tag=investor", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var contacts []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &contacts))
	require.Len(t, contacts, 1)

	rec = env.doJSON(t, http.MethodGet, "/api/contacts/tags", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.uploadCSV(t, "/api/contacts/import", "contacts.csv",
		"name,email\nGrace,grace@capital.vc\n")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	report := decodeBody(t, rec)
	assert.Equal(t, float64(1), report["imported"])

	rec = env.doJSON(t, http.MethodDelete, "/api/contacts/"+contactID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.doJSON(t, http.MethodDelete, "/api/contacts/"+contactID, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEmailSendAndLogs(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(t, http.MethodPost, "/api/contacts", map[string]any{
		"name":  "Ada Investor",
		"email": "ada@fund.vc",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	contactID := decodeBody(t, rec)["id"].(string)

	rec = env.doJSON(t, http.MethodPost, "/api/email/send", map[string]any{
		"contact_ids":  []string{contactID},
		"subject":      "Monthly update",
		"html_content": "<p>Numbers up.</p>",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	report := decodeBody(t, rec)
	assert.Equal(t, float64(1), report["sent"])
	assert.Equal(t, 1, env.sender.sent)

	rec = env.doJSON(t, http.MethodGet, "/api/email/logs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var logs []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &logs))
	require.Len(t, logs, 1)
}

func TestUpdatesEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(t, http.MethodPost, "/api/updates", map[string]any{
		"content": "Closed pilot with Acme",
		"tags":    []string{"sales"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	updateID := decodeBody(t, rec)["id"].(string)

	rec = env.doJSON(t, http.MethodGet, "/api/updates", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.doJSON(t, http.MethodGet, "/api/updates/"+updateID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	env.insight.response = `{"summary": "Busy week.", "key_themes": [], "momentum_signal": "positive",
		"suggested_metrics_to_track": [], "recommended_update_for_investors": "",
		"action_items": [], "trend_observations": []}`
	rec = env.doJSON(t, http.MethodPost, "/api/updates/ai-analyze", map[string]any{"days": 7})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	analysis := decodeBody(t, rec)
	assert.Equal(t, float64(1), analysis["updates_analyzed"])

	rec = env.doJSON(t, http.MethodDelete, "/api/updates/"+updateID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Window is empty now.
	rec = env.doJSON(t, http.MethodPost, "/api/updates/ai-analyze", map[string]any{"days": 7})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDashboardOverviewEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(t, http.MethodGet, "/api/dashboard/overview", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	overview := decodeBody(t, rec)
	assert.Equal(t, float64(0), overview["total_datasets"])
	assert.Nil(t, overview["latest_metrics"])
}

func TestUploadRejectsMalformedFile(t *testing.T) {
	env := newTestEnv(t)

	rec := env.uploadCSV(t, "/api/data/upload", "broken.csv", "a,b\n\"unterminated\n")
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")
}

func TestLogoutClearsCookie(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(t, http.MethodPost, "/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "session cookie should be expired")

	// The session no longer authenticates.
	rec = env.doJSON(t, http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMeReturnsUser(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(t, http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "founder@example.com", decodeBody(t, rec)["email"])
}
