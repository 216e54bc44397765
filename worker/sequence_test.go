package worker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boscogd/waitlist/models"
)

func TestProcessSequenceAdvancesDueSubscriber(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, models.SeedSequenceDefaults(db))
	seedSequenceTemplates(t, db, 1, 2, 3)
	mailer := &mockMailer{}
	cw := newTestWorker(db, mailer)

	// Registered four days ago, never emailed: step 1 waits three days
	entry := seedSubscriber(t, db, "maria@example.com", 0, nil)
	require.NoError(t, db.Model(&entry).Update("created_at", daysAgo(4)).Error)

	result := cw.ProcessSequence()

	assert.Equal(t, 1, result.Sent)
	assert.Equal(t, 0, result.Failed)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "maria@example.com", mailer.sent[0].To)
	assert.Contains(t, mailer.sent[0].Subject, "paso 1")
	assert.Contains(t, mailer.sent[0].Subject, "Test User")

	var updated models.WaitlistEntry
	require.NoError(t, db.First(&updated, entry.ID).Error)
	assert.Equal(t, 1, updated.EmailSequenceStep)
	require.NotNil(t, updated.LastEmailSentAt)
	assert.WithinDuration(t, time.Now(), *updated.LastEmailSentAt, time.Minute)
}

func TestProcessSequenceSkipsSubscriberNotYetDue(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, models.SeedSequenceDefaults(db))
	seedSequenceTemplates(t, db, 1, 2, 3)
	mailer := &mockMailer{}
	cw := newTestWorker(db, mailer)

	// Step 2 waits five days; only two have passed
	lastSent := daysAgo(2)
	entry := seedSubscriber(t, db, "pedro@example.com", 1, &lastSent)

	result := cw.ProcessSequence()

	assert.Equal(t, 0, result.Sent)
	assert.Equal(t, 1, result.Skipped)
	assert.Empty(t, mailer.sent)

	var updated models.WaitlistEntry
	require.NoError(t, db.First(&updated, entry.ID).Error)
	assert.Equal(t, 1, updated.EmailSequenceStep)
}

func TestProcessSequenceAdvancesAtMostOneStepPerRun(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, models.SeedSequenceDefaults(db))
	seedSequenceTemplates(t, db, 1, 2, 3)
	mailer := &mockMailer{}
	cw := newTestWorker(db, mailer)

	// Long overdue for several steps, still advances only once per pass
	entry := seedSubscriber(t, db, "ana@example.com", 0, nil)
	require.NoError(t, db.Model(&entry).Update("created_at", daysAgo(60)).Error)

	result := cw.ProcessSequence()

	assert.Equal(t, 1, result.Sent)
	require.Len(t, mailer.sent, 1)

	var updated models.WaitlistEntry
	require.NoError(t, db.First(&updated, entry.ID).Error)
	assert.Equal(t, 1, updated.EmailSequenceStep)
}

func TestProcessSequenceBackToBackRunsSendOnce(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, models.SeedSequenceDefaults(db))
	seedSequenceTemplates(t, db, 1, 2, 3)
	mailer := &mockMailer{}
	cw := newTestWorker(db, mailer)

	entry := seedSubscriber(t, db, "maria@example.com", 0, nil)
	require.NoError(t, db.Model(&entry).Update("created_at", daysAgo(4)).Error)

	first := cw.ProcessSequence()
	second := cw.ProcessSequence()

	// The first run advanced the step and stamped the send time, so the
	// second finds the next step not yet due.
	assert.Equal(t, 1, first.Sent)
	assert.Equal(t, 0, second.Sent)
	assert.Equal(t, 1, second.Skipped)
	assert.Len(t, mailer.sent, 1)

	var updated models.WaitlistEntry
	require.NoError(t, db.First(&updated, entry.ID).Error)
	assert.Equal(t, 1, updated.EmailSequenceStep)
}

func TestProcessSequenceSkipsExhaustedSubscriber(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, models.SeedSequenceDefaults(db))
	seedSequenceTemplates(t, db, 1, 2, 3)
	mailer := &mockMailer{}
	cw := newTestWorker(db, mailer)

	lastSent := daysAgo(30)
	seedSubscriber(t, db, "done@example.com", 3, &lastSent)

	result := cw.ProcessSequence()

	assert.Equal(t, 0, result.Sent)
	assert.Equal(t, 1, result.Skipped)
	assert.Empty(t, mailer.sent)
}

func TestProcessSequenceSkipsOnMissingTemplate(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, models.SeedSequenceDefaults(db))
	// Only templates for steps 1 and 3 exist
	seedSequenceTemplates(t, db, 1, 3)
	mailer := &mockMailer{}
	cw := newTestWorker(db, mailer)

	lastSent := daysAgo(10)
	entry := seedSubscriber(t, db, "stuck@example.com", 1, &lastSent)

	result := cw.ProcessSequence()

	assert.Equal(t, 0, result.Sent)
	assert.Equal(t, 1, result.Skipped)

	var updated models.WaitlistEntry
	require.NoError(t, db.First(&updated, entry.ID).Error)
	assert.Equal(t, 1, updated.EmailSequenceStep)
}

func TestProcessSequenceSkipsOnDeactivatedTemplate(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, models.SeedSequenceDefaults(db))
	seedSequenceTemplates(t, db, 1)
	require.NoError(t, db.Model(&models.EmailTemplate{}).
		Where("template_key = ?", "sequence_step_1").
		Update("is_active", false).Error)
	mailer := &mockMailer{}
	cw := newTestWorker(db, mailer)

	entry := seedSubscriber(t, db, "inactive@example.com", 0, nil)
	require.NoError(t, db.Model(&entry).Update("created_at", daysAgo(10)).Error)

	result := cw.ProcessSequence()

	assert.Equal(t, 1, result.Skipped)
	assert.Empty(t, mailer.sent)
}

func TestProcessSequenceFailureLeavesStepUnchanged(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, models.SeedSequenceDefaults(db))
	seedSequenceTemplates(t, db, 1, 2, 3)
	mailer := &mockMailer{failFor: map[string]error{
		"broken@example.com": errors.New("provider rejected"),
	}}
	cw := newTestWorker(db, mailer)

	entry := seedSubscriber(t, db, "broken@example.com", 0, nil)
	require.NoError(t, db.Model(&entry).Update("created_at", daysAgo(10)).Error)

	result := cw.ProcessSequence()

	assert.Equal(t, 0, result.Sent)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "broken@example.com", result.Errors[0].Email)

	var updated models.WaitlistEntry
	require.NoError(t, db.First(&updated, entry.ID).Error)
	assert.Equal(t, 0, updated.EmailSequenceStep)
	assert.Nil(t, updated.LastEmailSentAt)

	var logs []models.EmailLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, models.LogStatusFailed, logs[0].Status)
	assert.Equal(t, "provider rejected", logs[0].ErrorMessage)
}

func TestProcessSequenceIgnoresUnsubscribed(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, models.SeedSequenceDefaults(db))
	seedSequenceTemplates(t, db, 1, 2, 3)
	mailer := &mockMailer{}
	cw := newTestWorker(db, mailer)

	entry := seedSubscriber(t, db, "gone@example.com", 0, nil)
	require.NoError(t, db.Model(&entry).Updates(map[string]interface{}{
		"created_at":   daysAgo(10),
		"unsubscribed": true,
	}).Error)

	result := cw.ProcessSequence()

	assert.Equal(t, 0, result.Processed)
	assert.Empty(t, mailer.sent)
}

func TestProcessSequenceNoActiveStepsIsNoop(t *testing.T) {
	db := newTestDB(t)
	mailer := &mockMailer{}
	cw := newTestWorker(db, mailer)

	entry := seedSubscriber(t, db, "any@example.com", 0, nil)
	require.NoError(t, db.Model(&entry).Update("created_at", daysAgo(10)).Error)

	result := cw.ProcessSequence()

	assert.Equal(t, 0, result.Processed)
	assert.Empty(t, mailer.sent)
}

func TestGetSequenceStats(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, models.SeedSequenceDefaults(db))
	cw := newTestWorker(db, &mockMailer{})

	seedSubscriber(t, db, "a@example.com", 0, nil)
	seedSubscriber(t, db, "b@example.com", 0, nil)
	seedSubscriber(t, db, "c@example.com", 2, nil)
	gone := seedSubscriber(t, db, "gone@example.com", 1, nil)
	require.NoError(t, db.Model(&gone).Update("unsubscribed", true).Error)

	stats, err := cw.GetSequenceStats()
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalUsers)
	assert.Equal(t, 2, stats.ByStep[0])
	assert.Equal(t, 1, stats.ByStep[2])
	assert.Len(t, stats.Config, 3)
	assert.Equal(t, 1, stats.Config[0].Step)
}
