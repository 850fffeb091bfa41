package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"founderpulse/internal/store"
)

func seedContacts(t *testing.T, st *store.Store, userID string, emails ...string) []string {
	t.Helper()
	svc := NewContactService(st, testLogger())
	ids := make([]string, len(emails))
	for i, email := range emails {
		c, err := svc.Create(context.Background(), userID, ContactInput{
			Name:  strptr("Contact " + email),
			Email: strptr(email),
		})
		require.NoError(t, err)
		ids[i] = c.ID
	}
	return ids
}

func TestSendReportsPerRecipientStatus(t *testing.T) {
	st := newTestStore(t)
	user := createTestUser(t, st)
	ids := seedContacts(t, st, user.ID, "ok@fund.vc", "bad@fund.vc")

	sender := &fakeSender{failFor: map[string]bool{"bad@fund.vc": true}}
	svc := NewEmailService(st, sender, testLogger())

	report, err := svc.Send(context.Background(), user.ID, SendRequest{
		ContactIDs:  ids,
		Subject:     "Monthly update",
		HTMLContent: "<p>Numbers are up.</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Sent)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Results, 2)
	assert.Equal(t, "sent", report.Results[0].Status)
	assert.Equal(t, "failed", report.Results[1].Status)
	assert.Contains(t, report.Results[1].Error, "rejected")

	// Successful delivery bumps the contact counters.
	contacts, err := st.ListContacts(context.Background(), user.ID, "")
	require.NoError(t, err)
	for _, c := range contacts {
		if c.Email == "ok@fund.vc" {
			assert.Equal(t, 1, c.EmailsSent)
			assert.NotNil(t, c.LastContacted)
		} else {
			assert.Equal(t, 0, c.EmailsSent)
		}
	}

	logs, err := svc.Logs(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, report.LogID, logs[0].ID)
	assert.Len(t, logs[0].Recipients, 2)
}

func TestSendSkipsUnknownContacts(t *testing.T) {
	st := newTestStore(t)
	user := createTestUser(t, st)
	ids := seedContacts(t, st, user.ID, "ok@fund.vc")

	sender := &fakeSender{}
	svc := NewEmailService(st, sender, testLogger())

	report, err := svc.Send(context.Background(), user.ID, SendRequest{
		ContactIDs:  append(ids, store.NewID("con")),
		Subject:     "Hello",
		HTMLContent: "<p>Hi</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Sent)
	assert.Len(t, report.Results, 1)
}

func TestSendNoValidContacts(t *testing.T) {
	st := newTestStore(t)
	user := createTestUser(t, st)

	svc := NewEmailService(st, &fakeSender{}, testLogger())

	_, err := svc.Send(context.Background(), user.ID, SendRequest{
		ContactIDs:  []string{store.NewID("con")},
		Subject:     "Hello",
		HTMLContent: "<p>Hi</p>",
	})
	require.Error(t, err)
}

func TestSendWithoutMailerConfigured(t *testing.T) {
	st := newTestStore(t)
	user := createTestUser(t, st)

	svc := NewEmailService(st, nil, testLogger())

	_, err := svc.Send(context.Background(), user.ID, SendRequest{
		ContactIDs:  []string{"con_x"},
		Subject:     "Hello",
		HTMLContent: "<p>Hi</p>",
	})
	require.Error(t, err)
}
