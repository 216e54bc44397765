package worker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boscogd/waitlist/models"
	"github.com/boscogd/waitlist/utils"
)

func recipientEmails(entries []models.WaitlistEntry) []string {
	emails := make([]string, 0, len(entries))
	for _, e := range entries {
		emails = append(emails, e.Email)
	}
	return emails
}

func TestResolveRecipientsAllExcludesUnsubscribed(t *testing.T) {
	db := newTestDB(t)
	cw := newTestWorker(db, &mockMailer{})

	seedSubscriber(t, db, "a@example.com", 0, nil)
	seedSubscriber(t, db, "b@example.com", 2, nil)
	gone := seedSubscriber(t, db, "gone@example.com", 1, nil)
	require.NoError(t, db.Model(&gone).Updates(map[string]interface{}{
		"unsubscribed":    true,
		"unsubscribed_at": time.Now(),
	}).Error)

	recipients, err := cw.ResolveRecipients(models.TargetAudience{All: true})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"a@example.com", "b@example.com"}, recipientEmails(recipients))
}

func TestResolveRecipientsSequenceStepFilters(t *testing.T) {
	db := newTestDB(t)
	cw := newTestWorker(db, &mockMailer{})

	seedSubscriber(t, db, "step0@example.com", 0, nil)
	seedSubscriber(t, db, "step1@example.com", 1, nil)
	seedSubscriber(t, db, "step3@example.com", 3, nil)

	recipients, err := cw.ResolveRecipients(models.TargetAudience{SequenceStep: utils.Pointer(1)})
	require.NoError(t, err)
	assert.Equal(t, []string{"step1@example.com"}, recipientEmails(recipients))

	recipients, err = cw.ResolveRecipients(models.TargetAudience{SequenceStepGTE: utils.Pointer(1)})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"step1@example.com", "step3@example.com"}, recipientEmails(recipients))

	recipients, err = cw.ResolveRecipients(models.TargetAudience{SequenceStepLTE: utils.Pointer(1)})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"step0@example.com", "step1@example.com"}, recipientEmails(recipients))
}

func TestResolveRecipientsRegistrationWindow(t *testing.T) {
	db := newTestDB(t)
	cw := newTestWorker(db, &mockMailer{})

	old := seedSubscriber(t, db, "old@example.com", 0, nil)
	require.NoError(t, db.Model(&old).Update("created_at", daysAgo(30)).Error)
	seedSubscriber(t, db, "new@example.com", 0, nil)

	cutoff := daysAgo(7)

	recipients, err := cw.ResolveRecipients(models.TargetAudience{RegisteredBefore: &cutoff})
	require.NoError(t, err)
	assert.Equal(t, []string{"old@example.com"}, recipientEmails(recipients))

	recipients, err = cw.ResolveRecipients(models.TargetAudience{RegisteredAfter: &cutoff})
	require.NoError(t, err)
	assert.Equal(t, []string{"new@example.com"}, recipientEmails(recipients))
}

func TestResolveRecipientsNotifiedFilter(t *testing.T) {
	db := newTestDB(t)
	cw := newTestWorker(db, &mockMailer{})

	notified := seedSubscriber(t, db, "notified@example.com", 0, nil)
	require.NoError(t, db.Model(&notified).Update("notified", true).Error)
	seedSubscriber(t, db, "pending@example.com", 0, nil)

	recipients, err := cw.ResolveRecipients(models.TargetAudience{Notified: utils.Pointer(false)})
	require.NoError(t, err)
	assert.Equal(t, []string{"pending@example.com"}, recipientEmails(recipients))
}

func TestResolveRecipientsCombinedClausesAreANDed(t *testing.T) {
	db := newTestDB(t)
	cw := newTestWorker(db, &mockMailer{})

	match := seedSubscriber(t, db, "match@example.com", 2, nil)
	require.NoError(t, db.Model(&match).Update("created_at", daysAgo(10)).Error)
	seedSubscriber(t, db, "wrongstep@example.com", 0, nil)
	seedSubscriber(t, db, "toonew@example.com", 2, nil)

	cutoff := daysAgo(5)
	recipients, err := cw.ResolveRecipients(models.TargetAudience{
		SequenceStepGTE:  utils.Pointer(1),
		RegisteredBefore: &cutoff,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"match@example.com"}, recipientEmails(recipients))
}

func TestResolveRecipientsAllIgnoresOtherClauses(t *testing.T) {
	db := newTestDB(t)
	cw := newTestWorker(db, &mockMailer{})

	seedSubscriber(t, db, "a@example.com", 0, nil)
	seedSubscriber(t, db, "b@example.com", 5, nil)

	recipients, err := cw.ResolveRecipients(models.TargetAudience{
		All:          true,
		SequenceStep: utils.Pointer(5),
	})
	require.NoError(t, err)
	assert.Len(t, recipients, 2)
}

func TestResolveRecipientsEmptyResultIsNotAnError(t *testing.T) {
	db := newTestDB(t)
	cw := newTestWorker(db, &mockMailer{})

	recipients, err := cw.ResolveRecipients(models.TargetAudience{All: true})
	require.NoError(t, err)
	assert.Empty(t, recipients)
}
