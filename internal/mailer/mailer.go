// Package mailer sends transactional email through the Resend HTTP API.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.resend.com"

// Mailer delivers email through Resend.
type Mailer struct {
	baseURL    string
	apiKey     string
	sender     string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Mailer.
type Option func(*Mailer)

// WithBaseURL overrides the API base URL (tests).
func WithBaseURL(url string) Option {
	return func(m *Mailer) { m.baseURL = url }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(m *Mailer) { m.httpClient = hc }
}

// New creates a Mailer sending from the given address.
func New(apiKey, sender string, logger *slog.Logger, opts ...Option) *Mailer {
	m := &Mailer{
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		sender:     sender,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger.With("component", "mailer"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type sendResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// Send delivers one HTML email to a single recipient and returns the
// provider message ID.
func (m *Mailer) Send(ctx context.Context, to, subject, html string) (string, error) {
	body, err := json.Marshal(sendRequest{
		From:    m.sender,
		To:      []string{to},
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		return "", fmt.Errorf("encode email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	var parsed sendResponse
	_ = json.Unmarshal(data, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := parsed.Message
		if msg == "" {
			msg = string(data)
		}
		m.logger.WarnContext(ctx, "email delivery rejected",
			"to", to,
			"status", resp.StatusCode)
		return "", fmt.Errorf("resend: status %d: %s", resp.StatusCode, msg)
	}

	m.logger.InfoContext(ctx, "email sent", "to", to, "message_id", parsed.ID)
	return parsed.ID, nil
}
