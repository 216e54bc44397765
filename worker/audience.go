package worker

import (
	"fmt"

	"github.com/boscogd/waitlist/models"
)

// ResolveRecipients turns a declarative audience filter into the concrete
// list of waitlist entries it selects. Unsubscribed entries are always
// excluded; with All set every other clause is ignored. An empty result is
// not an error.
func (cw *CampaignWorker) ResolveRecipients(audience models.TargetAudience) ([]models.WaitlistEntry, error) {
	query := cw.DB.Where("unsubscribed = ?", false)

	if !audience.All {
		if audience.SequenceStep != nil {
			query = query.Where("email_sequence_step = ?", *audience.SequenceStep)
		}
		if audience.SequenceStepGTE != nil {
			query = query.Where("email_sequence_step >= ?", *audience.SequenceStepGTE)
		}
		if audience.SequenceStepLTE != nil {
			query = query.Where("email_sequence_step <= ?", *audience.SequenceStepLTE)
		}
		if audience.RegisteredBefore != nil {
			query = query.Where("created_at < ?", *audience.RegisteredBefore)
		}
		if audience.RegisteredAfter != nil {
			query = query.Where("created_at > ?", *audience.RegisteredAfter)
		}
		if audience.Notified != nil {
			query = query.Where("notified = ?", *audience.Notified)
		}
	}

	var recipients []models.WaitlistEntry
	if err := query.Find(&recipients).Error; err != nil {
		return nil, fmt.Errorf("failed to resolve recipients: %w", err)
	}
	return recipients, nil
}
