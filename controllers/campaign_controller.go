package controller

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/boscogd/waitlist/models"
	"github.com/boscogd/waitlist/worker"
)

type CampaignController struct {
	DB     *gorm.DB
	Worker *worker.CampaignWorker
	Logger *log.Logger
}

func NewCampaignController(db *gorm.DB, campaignWorker *worker.CampaignWorker, logger *log.Logger) *CampaignController {
	return &CampaignController{
		DB:     db,
		Worker: campaignWorker,
		Logger: logger,
	}
}

// RunPass executes one full campaign pass: due scheduled broadcasts first,
// then the drip sequence.
func (cc *CampaignController) RunPass(c *fiber.Ctx) error {
	result := cc.Worker.RunPass()
	return c.JSON(fiber.Map{
		"success": true,
		"data":    result,
	})
}

// ProcessSequence runs only the drip-sequence half of a pass
func (cc *CampaignController) ProcessSequence(c *fiber.Ctx) error {
	result := cc.Worker.ProcessSequence()
	return c.JSON(fiber.Map{
		"success": true,
		"data":    result,
	})
}

// SequenceStats reports subscriber distribution across sequence steps
func (cc *CampaignController) SequenceStats(c *fiber.Ctx) error {
	stats, err := cc.Worker.GetSequenceStats()
	if err != nil {
		cc.Logger.Printf("Failed to compute sequence stats: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to compute sequence stats",
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    stats,
	})
}

// ProcessScheduled runs only the scheduled-broadcast half of a pass
func (cc *CampaignController) ProcessScheduled(c *fiber.Ctx) error {
	result := cc.Worker.ProcessScheduled()
	return c.JSON(fiber.Map{
		"success": true,
		"data":    result,
	})
}

// ScheduledStatus is a public peek at the scheduled queue: how many drafts
// are waiting, how many are due, and when the next one fires.
func (cc *CampaignController) ScheduledStatus(c *fiber.Ctx) error {
	now := time.Now()

	var pending int64
	if err := cc.DB.Model(&models.EmailDraft{}).
		Where("status = ?", models.StatusScheduled).
		Count(&pending).Error; err != nil {
		cc.Logger.Printf("Failed to count scheduled drafts: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch scheduled status",
		})
	}

	var due int64
	cc.DB.Model(&models.EmailDraft{}).
		Where("status = ? AND scheduled_for <= ?", models.StatusScheduled, now).
		Count(&due)

	var next models.EmailDraft
	var nextAt *time.Time
	if err := cc.DB.
		Where("status = ? AND scheduled_for > ?", models.StatusScheduled, now).
		Order("scheduled_for asc").
		First(&next).Error; err == nil {
		nextAt = next.ScheduledFor
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"pending":      pending,
			"due":          due,
			"next_send_at": nextAt,
			"checked_at":   now,
		},
	})
}
