package store

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"founderpulse/internal/metrics"
)

// NewID returns a prefixed entity ID, e.g. "ds_3f2a9c81b04d".
// The suffix is the first 12 hex digits of a UUID v4.
func NewID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
}

// User is an authenticated account, provisioned on first session exchange.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Picture   string    `json:"picture,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is a server-side login session addressed by its opaque token.
type Session struct {
	Token     string    `json:"-"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the session is past its expiry.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Dataset is one uploaded table. Rows hold the parsed cells keyed by
// normalized column name; empty cells are nil.
type Dataset struct {
	ID             string           `json:"id"`
	UserID         string           `json:"user_id"`
	Filename       string           `json:"filename"`
	Columns        []string         `json:"columns"`
	NumericColumns []string         `json:"numeric_columns"`
	PeriodColumn   string           `json:"period_column,omitempty"`
	Rows           []map[string]any `json:"rows,omitempty"`
	RowCount       int              `json:"row_count"`
	CreatedAt      time.Time        `json:"created_at"`
}

// Summary returns a copy without row data, for list responses.
func (d *Dataset) Summary() *Dataset {
	out := *d
	out.Rows = nil
	return &out
}

// MetricsRecord is the persisted output of one engine run over a dataset.
// The embedded result inlines the five scores, detail and trends.
type MetricsRecord struct {
	ID        string `json:"id"`
	DatasetID string `json:"dataset_id"`
	UserID    string `json:"user_id"`
	metrics.Result
	ComputedAt time.Time `json:"computed_at"`
}

// Insight is the stored LLM analysis for a dataset. Content holds the
// parsed JSON document produced by the model (or the fallback envelope).
type Insight struct {
	ID        string         `json:"id"`
	DatasetID string         `json:"dataset_id"`
	UserID    string         `json:"user_id"`
	Content   map[string]any `json:"insights"`
	CreatedAt time.Time      `json:"generated_at"`
}

// Narrative is one generated investor-facing text.
type Narrative struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	DatasetID     string    `json:"dataset_id"`
	Type          string    `json:"narrative_type"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	KeyHighlights []string  `json:"key_highlights"`
	CustomContext string    `json:"custom_context,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Update is a founder journal entry.
type Update struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	Images    []string  `json:"images,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Contact is an investor or stakeholder record.
type Contact struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Company       string     `json:"company,omitempty"`
	Role          string     `json:"role,omitempty"`
	Tags          []string   `json:"tags"`
	Notes         string     `json:"notes,omitempty"`
	EmailsSent    int        `json:"emails_sent"`
	LastContacted *time.Time `json:"last_contacted,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// RecipientStatus is the per-contact delivery outcome of one send.
type RecipientStatus struct {
	ContactID string `json:"contact_id"`
	Email     string `json:"email"`
	Status    string `json:"status"` // sent or failed
	Error     string `json:"error,omitempty"`
}

// EmailLog records one outbound send operation.
type EmailLog struct {
	ID          string            `json:"id"`
	UserID      string            `json:"user_id"`
	Subject     string            `json:"subject"`
	NarrativeID string            `json:"narrative_id,omitempty"`
	Recipients  []RecipientStatus `json:"recipients"`
	SentAt      time.Time         `json:"sent_at"`
}
