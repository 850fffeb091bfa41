package mailer

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestSend(t *testing.T) {
	var got sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		io.WriteString(w, `{"id":"email_123"}`)
	}))
	defer srv.Close()

	m := New("re-test", "updates@founderpulse.app", testLogger(), WithBaseURL(srv.URL))
	id, err := m.Send(context.Background(), "ada@vc.com", "Monthly update", "<p>hi</p>")
	require.NoError(t, err)

	assert.Equal(t, "email_123", id)
	assert.Equal(t, "updates@founderpulse.app", got.From)
	assert.Equal(t, []string{"ada@vc.com"}, got.To)
	assert.Equal(t, "Monthly update", got.Subject)
}

func TestSendRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		io.WriteString(w, `{"message":"invalid recipient"}`)
	}))
	defer srv.Close()

	m := New("re-test", "updates@founderpulse.app", testLogger(), WithBaseURL(srv.URL))
	_, err := m.Send(context.Background(), "not-an-email", "subject", "<p>hi</p>")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid recipient")
	assert.Contains(t, err.Error(), "422")
}
