package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// CreateEmailLog persists the outcome of one send operation.
func (s *Store) CreateEmailLog(ctx context.Context, l *EmailLog) (*EmailLog, error) {
	l.ID = NewID("elog")
	l.SentAt = time.Now().UTC()

	recipientsJSON, err := json.Marshal(l.Recipients)
	if err != nil {
		return nil, fmt.Errorf("encode recipients: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO email_logs (id, user_id, subject, narrative_id, recipients_json, sent_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		l.ID, l.UserID, l.Subject, l.NarrativeID, string(recipientsJSON), l.SentAt)
	if err != nil {
		return nil, fmt.Errorf("insert email log: %w", err)
	}
	return l, nil
}

// ListEmailLogs returns the user's send history newest first.
func (s *Store) ListEmailLogs(ctx context.Context, userID string) ([]*EmailLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, subject, narrative_id, recipients_json, sent_at
		FROM email_logs WHERE user_id = ? ORDER BY sent_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query email logs: %w", err)
	}
	defer rows.Close()

	logs := make([]*EmailLog, 0)
	for rows.Next() {
		var l EmailLog
		var narrativeID sql.NullString
		var recipientsJSON string
		if err := rows.Scan(&l.ID, &l.UserID, &l.Subject, &narrativeID, &recipientsJSON, &l.SentAt); err != nil {
			return nil, fmt.Errorf("scan email log: %w", err)
		}
		l.NarrativeID = narrativeID.String
		json.Unmarshal([]byte(recipientsJSON), &l.Recipients)
		logs = append(logs, &l)
	}
	return logs, rows.Err()
}

// Counts used by the dashboard overview.

// CountDatasets returns the number of datasets the user owns.
func (s *Store) CountDatasets(ctx context.Context, userID string) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM datasets WHERE user_id = ?`, userID)
}

// CountContacts returns the number of contacts the user owns.
func (s *Store) CountContacts(ctx context.Context, userID string) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM contacts WHERE user_id = ?`, userID)
}

// CountNarratives returns the number of narratives the user owns.
func (s *Store) CountNarratives(ctx context.Context, userID string) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM narratives WHERE user_id = ?`, userID)
}

// CountUpdates returns the number of journal entries the user owns.
func (s *Store) CountUpdates(ctx context.Context, userID string) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM updates WHERE user_id = ?`, userID)
}

func (s *Store) count(ctx context.Context, query, userID string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, query, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}
