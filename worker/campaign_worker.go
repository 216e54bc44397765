package worker

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/boscogd/waitlist/models"
	"github.com/boscogd/waitlist/utils"
)

// CampaignWorker runs the email dispatch passes: due scheduled broadcasts
// first, then the drip sequence. Sends within a pass are serial and paced by
// SendPause to stay under the provider's rate limits; no locking guards
// against overlapping passes beyond the conditional status updates, so the
// scheduler is expected to serialize triggers.
type CampaignWorker struct {
	DB        *gorm.DB
	Mailer    utils.Mailer
	Logger    *log.Logger
	SendPause time.Duration
}

// PassResult aggregates the outcome of one full campaign pass
type PassResult struct {
	ScheduledBroadcasts ScheduledResult `json:"scheduled_broadcasts"`
	Sequence            SequenceResult  `json:"sequence"`
}

func NewCampaignWorker(db *gorm.DB, mailer utils.Mailer, logger *log.Logger, sendPause time.Duration) *CampaignWorker {
	return &CampaignWorker{
		DB:        db,
		Mailer:    mailer,
		Logger:    logger,
		SendPause: sendPause,
	}
}

// RunPass processes scheduled broadcasts and then the drip sequence. The
// broadcast pass runs first so a one-off scheduled "now" is never starved
// behind the longer sequence scan.
func (cw *CampaignWorker) RunPass() PassResult {
	cw.Logger.Println("Starting campaign pass")

	result := PassResult{
		ScheduledBroadcasts: cw.ProcessScheduled(),
	}
	result.Sequence = cw.ProcessSequence()

	cw.Logger.Printf("Campaign pass completed: %d broadcasts processed, sequence %d sent / %d failed / %d skipped",
		result.ScheduledBroadcasts.Processed,
		result.Sequence.Sent, result.Sequence.Failed, result.Sequence.Skipped)
	return result
}

// Start runs campaign passes on the given cron schedule until the context is
// cancelled.
func (cw *CampaignWorker) Start(ctx context.Context, schedule string) error {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		cw.RunPass()
	}); err != nil {
		return err
	}

	cw.Logger.Printf("Campaign worker started with schedule %q", schedule)
	c.Start()

	<-ctx.Done()
	cw.Logger.Println("Campaign worker shutting down...")
	stopCtx := c.Stop()
	<-stopCtx.Done()
	return nil
}

// recordLog appends one delivery log entry. Log failures are reported but
// never abort the send they describe.
func (cw *CampaignWorker) recordLog(entry models.EmailLog) {
	if err := cw.DB.Create(&entry).Error; err != nil {
		cw.Logger.Printf("Failed to record email log for %s: %v", entry.EmailTo, err)
	}
}

// pause sleeps the configured inter-send delay
func (cw *CampaignWorker) pause() {
	if cw.SendPause > 0 {
		time.Sleep(cw.SendPause)
	}
}
