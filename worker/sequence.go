package worker

import (
	"time"

	"github.com/boscogd/waitlist/models"
	"github.com/boscogd/waitlist/utils"
)

// SequenceResult summarizes one drip-sequence pass
type SequenceResult struct {
	Processed int         `json:"processed"`
	Sent      int         `json:"sent"`
	Failed    int         `json:"failed"`
	Skipped   int         `json:"skipped"`
	Errors    []SendError `json:"errors"`
}

// SendError is one per-recipient delivery failure
type SendError struct {
	Email string `json:"email"`
	Error string `json:"error"`
}

// SequenceStats is the read-only view of sequence progress
type SequenceStats struct {
	TotalUsers int                     `json:"total_users"`
	ByStep     map[int]int             `json:"by_step"`
	Config     []models.SequenceConfig `json:"sequence_config"`
}

// ProcessSequence advances every eligible subscriber at most one sequence
// step. A subscriber advances only when the configured waiting days for the
// next step have elapsed and the send succeeds; failures leave the step
// untouched so the next pass retries it.
func (cw *CampaignWorker) ProcessSequence() SequenceResult {
	result := SequenceResult{Errors: []SendError{}}

	var steps []models.SequenceConfig
	if err := cw.DB.
		Where("is_active = ?", true).
		Order("step asc").
		Find(&steps).Error; err != nil {
		cw.Logger.Printf("Error fetching sequence config: %v", err)
		return result
	}
	if len(steps) == 0 {
		cw.Logger.Println("No active sequence steps configured")
		return result
	}

	var entries []models.WaitlistEntry
	if err := cw.DB.Where("unsubscribed = ?", false).Find(&entries).Error; err != nil {
		cw.Logger.Printf("Error fetching waitlist entries: %v", err)
		return result
	}
	if len(entries) == 0 {
		return result
	}

	cw.Logger.Printf("Processing sequence for %d subscribers...", len(entries))

	for _, entry := range entries {
		result.Processed++

		nextStep := entry.EmailSequenceStep + 1
		stepConfig := findStep(steps, nextStep)
		if stepConfig == nil {
			// Sequence exhausted for this subscriber
			result.Skipped++
			continue
		}

		lastSent := entry.CreatedAt
		if entry.LastEmailSentAt != nil {
			lastSent = *entry.LastEmailSentAt
		}
		if daysSince(lastSent) < stepConfig.DaysAfterPrevious {
			result.Skipped++
			continue
		}

		var template models.EmailTemplate
		if err := cw.DB.
			Where("template_key = ? AND is_active = ?", stepConfig.TemplateKey, true).
			First(&template).Error; err != nil {
			// Missing or deactivated template: skip, retry next run
			cw.Logger.Printf("Template %q not found for step %d", stepConfig.TemplateKey, nextStep)
			result.Skipped++
			continue
		}

		subject := Personalize(template.Subject, entry)
		html := Personalize(template.HTMLContent, entry)

		providerID, sendErr := cw.Mailer.Send(utils.OutgoingEmail{
			To:          entry.Email,
			Subject:     subject,
			HTMLContent: html,
			PreviewText: template.PreviewText,
		})

		logEntry := models.EmailLog{
			WaitlistID: &entry.ID,
			EmailTo:    entry.Email,
			Subject:    subject,
		}

		if sendErr != nil {
			result.Failed++
			result.Errors = append(result.Errors, SendError{
				Email: entry.Email,
				Error: sendErr.Error(),
			})
			logEntry.Status = models.LogStatusFailed
			logEntry.ErrorMessage = sendErr.Error()
			cw.Logger.Printf("Sequence send to %s failed: %v", entry.Email, sendErr)
		} else {
			result.Sent++
			logEntry.Status = models.LogStatusSent
			logEntry.ResendID = providerID

			// Advance only if no concurrent pass moved the subscriber already
			advance := cw.DB.Model(&models.WaitlistEntry{}).
				Where("id = ? AND email_sequence_step = ?", entry.ID, entry.EmailSequenceStep).
				Updates(map[string]interface{}{
					"email_sequence_step": nextStep,
					"last_email_sent_at":  time.Now(),
				})
			if advance.Error != nil {
				cw.Logger.Printf("Error advancing %s to step %d: %v", entry.Email, nextStep, advance.Error)
			}
			cw.Logger.Printf("Sequence email sent to %s (step %d)", entry.Email, nextStep)
		}
		cw.recordLog(logEntry)

		cw.pause()
	}

	cw.Logger.Printf("Sequence completed: %d sent, %d failed, %d skipped",
		result.Sent, result.Failed, result.Skipped)
	return result
}

// GetSequenceStats returns per-step subscriber counts and the active step
// configuration. Read-only.
func (cw *CampaignWorker) GetSequenceStats() (SequenceStats, error) {
	stats := SequenceStats{ByStep: map[int]int{}, Config: []models.SequenceConfig{}}

	var entries []models.WaitlistEntry
	if err := cw.DB.
		Select("email_sequence_step").
		Where("unsubscribed = ?", false).
		Find(&entries).Error; err != nil {
		return stats, err
	}

	stats.TotalUsers = len(entries)
	for _, entry := range entries {
		stats.ByStep[entry.EmailSequenceStep]++
	}

	if err := cw.DB.
		Where("is_active = ?", true).
		Order("step asc").
		Find(&stats.Config).Error; err != nil {
		return stats, err
	}

	return stats, nil
}

func findStep(steps []models.SequenceConfig, step int) *models.SequenceConfig {
	for i := range steps {
		if steps[i].Step == step {
			return &steps[i]
		}
	}
	return nil
}

// daysSince returns whole elapsed days since t
func daysSince(t time.Time) int {
	return int(time.Since(t).Hours() / 24)
}
