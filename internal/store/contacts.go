package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	apierrors "founderpulse/internal/errors"
)

// CreateContact persists a contact. A second contact with the same email for
// the same user is rejected as a conflict.
func (s *Store) CreateContact(ctx context.Context, c *Contact) (*Contact, error) {
	c.ID = NewID("con")
	c.CreatedAt = time.Now().UTC()
	if c.Tags == nil {
		c.Tags = []string{}
	}
	tagsJSON, _ := json.Marshal(c.Tags)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contacts (id, user_id, name, email, company, role, tags_json, notes, emails_sent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, ?)`,
		c.ID, c.UserID, c.Name, c.Email, c.Company, c.Role, string(tagsJSON), c.Notes, c.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, apierrors.ErrConflict
		}
		return nil, fmt.Errorf("insert contact: %w", err)
	}
	return c, nil
}

// GetContact returns one contact by ID, scoped to the user.
func (s *Store) GetContact(ctx context.Context, userID, id string) (*Contact, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, email, company, role, tags_json, notes, emails_sent, last_contacted, created_at
		FROM contacts WHERE id = ? AND user_id = ?`, id, userID)

	c, err := scanContact(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apierrors.ErrContactNotFound
	}
	return c, err
}

// ListContacts returns the user's contacts newest first, optionally
// restricted to those carrying tag.
func (s *Store) ListContacts(ctx context.Context, userID, tag string) ([]*Contact, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, email, company, role, tags_json, notes, emails_sent, last_contacted, created_at
		FROM contacts WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query contacts: %w", err)
	}
	defer rows.Close()

	contacts := make([]*Contact, 0)
	for rows.Next() {
		c, err := scanContact(rows.Scan)
		if err != nil {
			return nil, err
		}
		if tag != "" && !hasTag(c.Tags, tag) {
			continue
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

// UpdateContact persists the merged contact fields.
func (s *Store) UpdateContact(ctx context.Context, c *Contact) error {
	tagsJSON, _ := json.Marshal(c.Tags)
	res, err := s.db.ExecContext(ctx, `
		UPDATE contacts SET name = ?, email = ?, company = ?, role = ?, tags_json = ?, notes = ?
		WHERE id = ? AND user_id = ?`,
		c.Name, c.Email, c.Company, c.Role, string(tagsJSON), c.Notes, c.ID, c.UserID)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return apierrors.ErrConflict
		}
		return fmt.Errorf("update contact: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apierrors.ErrContactNotFound
	}
	return nil
}

// DeleteContact removes one contact.
func (s *Store) DeleteContact(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM contacts WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apierrors.ErrContactNotFound
	}
	return nil
}

// RecordEmailSent bumps the contact's send counter and last-contacted time.
func (s *Store) RecordEmailSent(ctx context.Context, userID, id string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE contacts SET emails_sent = emails_sent + 1, last_contacted = ?
		WHERE id = ? AND user_id = ?`, at.UTC(), id, userID)
	if err != nil {
		return fmt.Errorf("record email sent: %w", err)
	}
	return nil
}

// TagCounts returns the user's tag histogram sorted by count descending,
// ties broken alphabetically.
func (s *Store) TagCounts(ctx context.Context, userID string) ([]TagCount, error) {
	contacts, err := s.ListContacts(ctx, userID, "")
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, c := range contacts {
		for _, tag := range c.Tags {
			counts[tag]++
		}
	}

	out := make([]TagCount, 0, len(counts))
	for tag, n := range counts {
		out = append(out, TagCount{Tag: tag, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	return out, nil
}

// TagCount is one entry of the contact tag histogram.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

func scanContact(scan func(dest ...any) error) (*Contact, error) {
	var c Contact
	var company, role, notes sql.NullString
	var tagsJSON string
	var lastContacted sql.NullTime

	err := scan(&c.ID, &c.UserID, &c.Name, &c.Email, &company, &role, &tagsJSON, &notes, &c.EmailsSent, &lastContacted, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan contact: %w", err)
	}

	c.Company = company.String
	c.Role = role.String
	c.Notes = notes.String
	json.Unmarshal([]byte(tagsJSON), &c.Tags)
	if c.Tags == nil {
		c.Tags = []string{}
	}
	if lastContacted.Valid {
		t := lastContacted.Time
		c.LastContacted = &t
	}
	return &c, nil
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
