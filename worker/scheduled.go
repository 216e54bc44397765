package worker

import (
	"time"

	"github.com/boscogd/waitlist/models"
	"github.com/boscogd/waitlist/utils"
)

// ScheduledResult summarizes one scheduled-broadcast pass
type ScheduledResult struct {
	Processed int            `json:"processed"`
	Sent      int            `json:"sent"`
	Failed    int            `json:"failed"`
	Details   []DraftSummary `json:"details"`
}

// DraftSummary reports the outcome of a single draft
type DraftSummary struct {
	DraftID uint   `json:"draft_id"`
	Subject string `json:"subject"`
	Sent    int    `json:"sent"`
	Failed  int    `json:"failed"`
}

// ProcessScheduled finds every draft whose send time has arrived and delivers
// it to its resolved audience. Each draft reaches a terminal status before
// the pass moves on; a draft another pass already claimed is skipped.
func (cw *CampaignWorker) ProcessScheduled() ScheduledResult {
	result := ScheduledResult{Details: []DraftSummary{}}

	var due []models.EmailDraft
	if err := cw.DB.
		Where("status = ? AND scheduled_for <= ?", models.StatusScheduled, time.Now()).
		Find(&due).Error; err != nil {
		cw.Logger.Printf("Error fetching scheduled drafts: %v", err)
		return result
	}

	if len(due) == 0 {
		return result
	}
	cw.Logger.Printf("Found %d scheduled drafts to send", len(due))

	for i := range due {
		draft := &due[i]

		// Claim the draft: scheduled -> sending. Zero rows affected means a
		// concurrent pass got there first.
		claim := cw.DB.Model(&models.EmailDraft{}).
			Where("id = ? AND status = ?", draft.ID, models.StatusScheduled).
			Update("status", models.StatusSending)
		if claim.Error != nil {
			cw.Logger.Printf("Error claiming draft %d: %v", draft.ID, claim.Error)
			continue
		}
		if claim.RowsAffected == 0 {
			cw.Logger.Printf("Draft %d already being processed, skipping", draft.ID)
			continue
		}

		sent, failed, err := cw.DeliverDraft(draft)
		if err != nil {
			// Recipient resolution failed; release the claim so the next
			// pass retries instead of leaving the draft stuck in sending.
			if revertErr := cw.DB.Model(draft).
				Update("status", models.StatusScheduled).Error; revertErr != nil {
				cw.Logger.Printf("Error reverting draft %d to scheduled: %v", draft.ID, revertErr)
			}
			utils.LogError("scheduled_draft_failed", err, map[string]interface{}{
				"draft_id": draft.ID,
				"subject":  draft.Subject,
			})
			continue
		}

		result.Processed++
		result.Sent += sent
		result.Failed += failed
		result.Details = append(result.Details, DraftSummary{
			DraftID: draft.ID,
			Subject: draft.Subject,
			Sent:    sent,
			Failed:  failed,
		})
		cw.Logger.Printf("Draft %d completed: %d sent, %d failed", draft.ID, sent, failed)
	}

	return result
}

// DeliverDraft resolves the draft's audience and sends to every recipient,
// then finalizes the draft's status and counters. The returned error is
// non-nil only when recipients could not be resolved; individual send
// failures are tallied, logged and do not stop the loop.
func (cw *CampaignWorker) DeliverDraft(draft *models.EmailDraft) (sent, failed int, err error) {
	recipients, err := cw.ResolveRecipients(draft.TargetAudience)
	if err != nil {
		return 0, 0, err
	}

	if len(recipients) == 0 {
		cw.Logger.Printf("Draft %d has no matching recipients", draft.ID)
		if err := cw.DB.Model(draft).Updates(map[string]interface{}{
			"status":           models.StatusSent,
			"sent_at":          time.Now(),
			"recipients_count": 0,
			"sent_count":       0,
			"failed_count":     0,
		}).Error; err != nil {
			cw.Logger.Printf("Error finalizing empty draft %d: %v", draft.ID, err)
		}
		return 0, 0, nil
	}

	if err := cw.DB.Model(draft).
		Update("recipients_count", len(recipients)).Error; err != nil {
		cw.Logger.Printf("Error writing recipient count for draft %d: %v", draft.ID, err)
	}

	for _, recipient := range recipients {
		subject := Personalize(draft.Subject, recipient)
		html := Personalize(draft.HTMLContent, recipient)

		providerID, sendErr := cw.Mailer.Send(utils.OutgoingEmail{
			To:          recipient.Email,
			Subject:     subject,
			HTMLContent: html,
			PreviewText: draft.PreviewText,
		})

		logEntry := models.EmailLog{
			DraftID:    &draft.ID,
			WaitlistID: &recipient.ID,
			EmailTo:    recipient.Email,
			Subject:    subject,
		}
		if sendErr != nil {
			failed++
			logEntry.Status = models.LogStatusFailed
			logEntry.ErrorMessage = sendErr.Error()
			cw.Logger.Printf("Send to %s failed: %v", recipient.Email, sendErr)
		} else {
			sent++
			logEntry.Status = models.LogStatusSent
			logEntry.ResendID = providerID
		}
		cw.recordLog(logEntry)

		cw.pause()
	}

	if err := cw.DB.Model(draft).Updates(map[string]interface{}{
		"status":       models.StatusSent,
		"sent_at":      time.Now(),
		"sent_count":   sent,
		"failed_count": failed,
	}).Error; err != nil {
		cw.Logger.Printf("Error finalizing draft %d: %v", draft.ID, err)
	}

	return sent, failed, nil
}
