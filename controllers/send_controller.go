package controller

import (
	"log"

	"github.com/badoux/checkmail"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/boscogd/waitlist/models"
	"github.com/boscogd/waitlist/utils"
	"github.com/boscogd/waitlist/worker"
)

type SendController struct {
	DB     *gorm.DB
	Mailer utils.Mailer
	Worker *worker.CampaignWorker
	Logger *log.Logger
}

func NewSendController(db *gorm.DB, mailer utils.Mailer, campaignWorker *worker.CampaignWorker, logger *log.Logger) *SendController {
	return &SendController{
		DB:     db,
		Mailer: mailer,
		Worker: campaignWorker,
		Logger: logger,
	}
}

// TestSend delivers a draft to a single address with synthetic
// placeholder values. The draft itself is not touched.
func (sc *SendController) TestSend(c *fiber.Ctx) error {
	var draft models.EmailDraft
	if err := sc.DB.First(&draft, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Draft not found",
		})
	}

	var input struct {
		TestEmail string `json:"test_email" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	input.TestEmail = utils.NormalizeEmail(input.TestEmail)
	if err := checkmail.ValidateFormat(input.TestEmail); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid test_email",
		})
	}

	vars := worker.TestVars(input.TestEmail)
	providerID, err := sc.Mailer.Send(utils.OutgoingEmail{
		To:          input.TestEmail,
		Subject:     "[PRUEBA] " + worker.PersonalizeWith(draft.Subject, vars),
		HTMLContent: worker.PersonalizeWith(draft.HTMLContent, vars),
		PreviewText: worker.PersonalizeWith(draft.PreviewText, vars),
	})
	if err != nil {
		utils.LogError("test_send_failed", err, map[string]interface{}{
			"draft_id": draft.ID,
			"to":       input.TestEmail,
		})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to send test email",
		})
	}

	sc.DB.Create(&models.EmailLog{
		DraftID:  &draft.ID,
		EmailTo:  input.TestEmail,
		Subject:  "[PRUEBA] " + worker.PersonalizeWith(draft.Subject, vars),
		Status:   models.LogStatusSent,
		ResendID: providerID,
	})

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Test email sent",
		"data": fiber.Map{
			"to":          input.TestEmail,
			"provider_id": providerID,
		},
	})
}

// SendDraft dispatches a draft to its resolved audience right now. The draft
// is claimed conditionally so two overlapping requests cannot both deliver it.
func (sc *SendController) SendDraft(c *fiber.Ctx) error {
	var draft models.EmailDraft
	if err := sc.DB.First(&draft, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Draft not found",
		})
	}

	switch draft.Status {
	case models.StatusSent:
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Draft has already been sent",
		})
	case models.StatusSending:
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Draft is already being sent",
		})
	case models.StatusCancelled:
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Draft has been cancelled",
		})
	}

	prevStatus := draft.Status
	claim := sc.DB.Model(&models.EmailDraft{}).
		Where("id = ? AND status = ?", draft.ID, draft.Status).
		Update("status", models.StatusSending)
	if claim.Error != nil {
		sc.Logger.Printf("Failed to claim draft %d: %v", draft.ID, claim.Error)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to send draft",
		})
	}
	if claim.RowsAffected == 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Draft is already being sent",
		})
	}
	draft.Status = models.StatusSending

	sent, failed, err := sc.Worker.DeliverDraft(&draft)
	if err != nil {
		// Recipient resolution failed before anything was delivered, so
		// put the draft back where it was.
		sc.DB.Model(&models.EmailDraft{}).
			Where("id = ?", draft.ID).
			Update("status", prevStatus)
		utils.LogError("draft_delivery_failed", err, map[string]interface{}{
			"draft_id": draft.ID,
		})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to resolve recipients",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Draft dispatched",
		"data": fiber.Map{
			"draft_id": draft.ID,
			"sent":     sent,
			"failed":   failed,
		},
	})
}
