package worker

import (
	"fmt"
	"io"
	"log"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/boscogd/waitlist/models"
	"github.com/boscogd/waitlist/utils"
)

// newTestDB opens a named in-memory database so every connection from the
// pool sees the same data.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))
	return db
}

// mockMailer records every accepted send and fails for configured addresses
type mockMailer struct {
	sent    []utils.OutgoingEmail
	failFor map[string]error
}

func (m *mockMailer) Send(email utils.OutgoingEmail) (string, error) {
	if err, ok := m.failFor[email.To]; ok {
		return "", err
	}
	m.sent = append(m.sent, email)
	return fmt.Sprintf("msg-%d", len(m.sent)), nil
}

func newTestWorker(db *gorm.DB, mailer utils.Mailer) *CampaignWorker {
	return NewCampaignWorker(db, mailer, log.New(io.Discard, "", 0), 0)
}

func daysAgo(n int) time.Time {
	return time.Now().AddDate(0, 0, -n)
}

var codeCounter int64

func seedSubscriber(t *testing.T, db *gorm.DB, email string, step int, lastSent *time.Time) models.WaitlistEntry {
	t.Helper()
	entry := models.WaitlistEntry{
		Email:             email,
		Name:              "Test User",
		Code:              fmt.Sprintf("REFUGIO-%05d", atomic.AddInt64(&codeCounter, 1)),
		EmailSequenceStep: step,
		LastEmailSentAt:   lastSent,
	}
	require.NoError(t, db.Create(&entry).Error)
	return entry
}

func seedSequenceTemplates(t *testing.T, db *gorm.DB, steps ...int) {
	t.Helper()
	for _, step := range steps {
		template := models.EmailTemplate{
			TemplateKey:  fmt.Sprintf("sequence_step_%d", step),
			Name:         fmt.Sprintf("Sequence step %d", step),
			EmailType:    models.TypeSequence,
			SequenceStep: utils.Pointer(step),
			Subject:      fmt.Sprintf("Hola {{name}}, paso %d", step),
			HTMLContent:  fmt.Sprintf("<p>Contenido del paso %d para {{name}}</p>", step),
			IsActive:     true,
		}
		require.NoError(t, db.Create(&template).Error)
	}
}
