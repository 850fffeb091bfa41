package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"founderpulse/internal/dataset"
	apierrors "founderpulse/internal/errors"
	"founderpulse/internal/store"
)

// ContactService manages the investor address book.
type ContactService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewContactService creates the contact service.
func NewContactService(st *store.Store, logger *slog.Logger) *ContactService {
	return &ContactService{
		store:  st,
		logger: logger.With(slog.String("component", "contact_service")),
	}
}

// ContactInput carries the mutable contact fields. On update, nil pointers
// leave the stored value untouched.
type ContactInput struct {
	Name    *string   `json:"name"`
	Email   *string   `json:"email" validate:"omitempty,email"`
	Company *string   `json:"company"`
	Role    *string   `json:"role"`
	Tags    *[]string `json:"tags"`
	Notes   *string   `json:"notes"`
}

// Create adds a contact. Email is unique per user.
func (s *ContactService) Create(ctx context.Context, userID string, in ContactInput) (*store.Contact, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, apierrors.ErrValidation("name", "must not be empty")
	}
	if in.Email == nil || !strings.Contains(*in.Email, "@") {
		return nil, apierrors.ErrValidation("email", "must be a valid email address")
	}

	contact := &store.Contact{
		UserID: userID,
		Name:   strings.TrimSpace(*in.Name),
		Email:  strings.TrimSpace(*in.Email),
	}
	if in.Company != nil {
		contact.Company = strings.TrimSpace(*in.Company)
	}
	if in.Role != nil {
		contact.Role = strings.TrimSpace(*in.Role)
	}
	if in.Tags != nil {
		contact.Tags = *in.Tags
	}
	if in.Notes != nil {
		contact.Notes = *in.Notes
	}
	return s.store.CreateContact(ctx, contact)
}

// List returns the user's contacts, optionally filtered to one tag.
func (s *ContactService) List(ctx context.Context, userID, tag string) ([]*store.Contact, error) {
	return s.store.ListContacts(ctx, userID, tag)
}

// Get returns one contact by ID.
func (s *ContactService) Get(ctx context.Context, userID, id string) (*store.Contact, error) {
	return s.store.GetContact(ctx, userID, id)
}

// Update applies the non-nil fields of in to the contact and returns the
// merged record. An input with no fields set is a validation error.
func (s *ContactService) Update(ctx context.Context, userID, id string, in ContactInput) (*store.Contact, error) {
	if in.Name == nil && in.Email == nil && in.Company == nil && in.Role == nil && in.Tags == nil && in.Notes == nil {
		return nil, apierrors.ErrValidation("body", "no fields to update")
	}

	contact, err := s.store.GetContact(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		contact.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		if !strings.Contains(*in.Email, "@") {
			return nil, apierrors.ErrValidation("email", "must be a valid email address")
		}
		contact.Email = strings.TrimSpace(*in.Email)
	}
	if in.Company != nil {
		contact.Company = strings.TrimSpace(*in.Company)
	}
	if in.Role != nil {
		contact.Role = strings.TrimSpace(*in.Role)
	}
	if in.Tags != nil {
		contact.Tags = *in.Tags
	}
	if in.Notes != nil {
		contact.Notes = *in.Notes
	}
	if err := s.store.UpdateContact(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

// Delete removes the contact.
func (s *ContactService) Delete(ctx context.Context, userID, id string) error {
	return s.store.DeleteContact(ctx, userID, id)
}

// TagCounts returns per-tag contact counts, most used first.
func (s *ContactService) TagCounts(ctx context.Context, userID string) ([]store.TagCount, error) {
	return s.store.TagCounts(ctx, userID)
}

// ImportReport summarizes one bulk import.
type ImportReport struct {
	Imported  int `json:"imported"`
	Skipped   int `json:"skipped"`
	TotalRows int `json:"total_rows"`
}

// Import bulk-loads contacts from a CSV or XLSX file. The file must carry an
// email column; rows without a plausible email, and rows whose email already
// exists for the user, are skipped rather than failing the import.
func (s *ContactService) Import(ctx context.Context, userID, filename string, r io.Reader) (*ImportReport, error) {
	parsed, err := dataset.Parse(filename, r)
	if err != nil {
		if errors.Is(err, dataset.ErrMalformedFile) {
			return nil, fmt.Errorf("%w: %v", apierrors.ErrMalformedUpload, err)
		}
		return nil, err
	}

	hasEmail := false
	for _, c := range parsed.Columns {
		if c == "email" {
			hasEmail = true
			break
		}
	}
	if !hasEmail {
		return nil, apierrors.ErrValidation("file", "must have an 'email' column")
	}

	report := &ImportReport{TotalRows: len(parsed.Rows)}
	for _, row := range parsed.Rows {
		email := strings.TrimSpace(cellString(row, "email"))
		if email == "" || !strings.Contains(email, "@") {
			report.Skipped++
			continue
		}

		contact := &store.Contact{
			UserID:  userID,
			Name:    firstCell(row, "name", "first_name"),
			Email:   email,
			Company: firstCell(row, "company", "organization"),
			Role:    firstCell(row, "role", "title", "position"),
			Tags:    splitTags(firstCell(row, "tags", "tag")),
			Notes:   cellString(row, "notes"),
		}
		if _, err := s.store.CreateContact(ctx, contact); err != nil {
			if errors.Is(err, apierrors.ErrConflict) {
				report.Skipped++
				continue
			}
			return nil, err
		}
		report.Imported++
	}

	s.logger.InfoContext(ctx, "contacts imported",
		"filename", filename,
		"imported", report.Imported,
		"skipped", report.Skipped)
	return report, nil
}

func cellString(row map[string]any, key string) string {
	v, ok := row[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", t), "0"), ".")
	default:
		return fmt.Sprint(t)
	}
}

func firstCell(row map[string]any, keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(cellString(row, key)); v != "" {
			return v
		}
	}
	return ""
}

func splitTags(raw string) []string {
	tags := make([]string, 0)
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
