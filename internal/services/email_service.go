package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	apierrors "founderpulse/internal/errors"
	"founderpulse/internal/store"
)

// EmailService dispatches narratives and ad-hoc mail to contacts.
type EmailService struct {
	store  *store.Store
	mailer Sender
	logger *slog.Logger
}

// NewEmailService creates the email service. A nil mailer means delivery is
// not configured and Send fails fast.
func NewEmailService(st *store.Store, mailer Sender, logger *slog.Logger) *EmailService {
	return &EmailService{
		store:  st,
		mailer: mailer,
		logger: logger.With(slog.String("component", "email_service")),
	}
}

// SendRequest is one outbound send operation.
type SendRequest struct {
	ContactIDs  []string `json:"contact_ids" validate:"required,min=1"`
	Subject     string   `json:"subject" validate:"required"`
	HTMLContent string   `json:"html_content" validate:"required"`
	NarrativeID string   `json:"narrative_id,omitempty"`
}

// SendReport summarizes one send across all recipients.
type SendReport struct {
	LogID   string                  `json:"log_id"`
	Sent    int                     `json:"sent"`
	Failed  int                     `json:"failed"`
	Results []store.RecipientStatus `json:"results"`
}

// Send delivers the message to each contact individually. Per-contact
// failures are recorded in the result rather than aborting the batch;
// successful sends bump the contact's counters. The whole batch is journaled
// as one email log.
func (s *EmailService) Send(ctx context.Context, userID string, req SendRequest) (*SendReport, error) {
	if s.mailer == nil {
		return nil, apierrors.New(500, "EMAIL_NOT_CONFIGURED", "email service not configured")
	}

	contacts := make([]*store.Contact, 0, len(req.ContactIDs))
	for _, id := range req.ContactIDs {
		contact, err := s.store.GetContact(ctx, userID, id)
		if err != nil {
			if errors.Is(err, apierrors.ErrContactNotFound) {
				continue
			}
			return nil, err
		}
		contacts = append(contacts, contact)
	}
	if len(contacts) == 0 {
		return nil, apierrors.ErrValidation("contact_ids", "no valid contacts found")
	}

	results := make([]store.RecipientStatus, 0, len(contacts))
	sent := 0
	for _, contact := range contacts {
		status := store.RecipientStatus{ContactID: contact.ID, Email: contact.Email}

		if _, err := s.mailer.Send(ctx, contact.Email, req.Subject, req.HTMLContent); err != nil {
			status.Status = "failed"
			status.Error = err.Error()
			s.logger.WarnContext(ctx, "email delivery failed",
				"contact_id", contact.ID,
				"error", err)
		} else {
			status.Status = "sent"
			sent++
			if err := s.store.RecordEmailSent(ctx, userID, contact.ID, time.Now().UTC()); err != nil {
				s.logger.WarnContext(ctx, "contact counter update failed",
					"contact_id", contact.ID,
					"error", err)
			}
		}
		results = append(results, status)
	}

	log, err := s.store.CreateEmailLog(ctx, &store.EmailLog{
		UserID:      userID,
		Subject:     req.Subject,
		NarrativeID: req.NarrativeID,
		Recipients:  results,
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "email batch sent",
		"log_id", log.ID,
		"sent", sent,
		"failed", len(results)-sent)
	return &SendReport{
		LogID:   log.ID,
		Sent:    sent,
		Failed:  len(results) - sent,
		Results: results,
	}, nil
}

// Logs returns the user's send history, newest first.
func (s *EmailService) Logs(ctx context.Context, userID string) ([]*store.EmailLog, error) {
	return s.store.ListEmailLogs(ctx, userID)
}
