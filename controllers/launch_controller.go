package controller

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/boscogd/waitlist/models"
	"github.com/boscogd/waitlist/utils"
)

type LaunchController struct {
	DB        *gorm.DB
	Mailer    utils.Mailer
	Logger    *log.Logger
	AppURL    string
	SendPause time.Duration
}

func NewLaunchController(db *gorm.DB, mailer utils.Mailer, logger *log.Logger, appURL string, sendPause time.Duration) *LaunchController {
	return &LaunchController{
		DB:        db,
		Mailer:    mailer,
		Logger:    logger,
		AppURL:    appURL,
		SendPause: sendPause,
	}
}

// NotifyLaunch sends the launch announcement to every subscriber that has not
// been notified yet. With test_mode only the given address receives it and no
// subscriber is marked.
func (lc *LaunchController) NotifyLaunch(c *fiber.Ctx) error {
	var input struct {
		TestMode  bool   `json:"test_mode"`
		TestEmail string `json:"test_email"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if input.TestMode {
		if input.TestEmail == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "test_email is required in test mode",
			})
		}
		entry := models.WaitlistEntry{
			Email: utils.NormalizeEmail(input.TestEmail),
			Name:  "Usuario de Prueba",
			Code:  "TEST-1234",
		}
		if _, err := utils.SendLaunchNotification(lc.Mailer, entry, lc.AppURL); err != nil {
			utils.LogError("launch_test_send_failed", err, map[string]interface{}{
				"to": entry.Email,
			})
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to send test notification",
			})
		}
		return c.JSON(fiber.Map{
			"success": true,
			"message": "Test launch notification sent",
			"data":    fiber.Map{"to": entry.Email},
		})
	}

	var entries []models.WaitlistEntry
	if err := lc.DB.
		Where("notified = ? AND unsubscribed = ?", false, false).
		Order("created_at asc").
		Find(&entries).Error; err != nil {
		lc.Logger.Printf("Failed to load pending subscribers: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load subscribers",
		})
	}

	success := 0
	failed := 0
	var sendErrors []fiber.Map
	for i, entry := range entries {
		if _, err := utils.SendLaunchNotification(lc.Mailer, entry, lc.AppURL); err != nil {
			failed++
			sendErrors = append(sendErrors, fiber.Map{
				"email": entry.Email,
				"error": err.Error(),
			})
			utils.LogError("launch_send_failed", err, map[string]interface{}{
				"email": entry.Email,
			})
		} else {
			success++
			if err := lc.DB.Model(&models.WaitlistEntry{}).
				Where("id = ?", entry.ID).
				Update("notified", true).Error; err != nil {
				lc.Logger.Printf("Failed to mark %s as notified: %v", entry.Email, err)
			}
		}
		if i < len(entries)-1 && lc.SendPause > 0 {
			time.Sleep(lc.SendPause)
		}
	}

	lc.Logger.Printf("Launch notification run: %d total, %d sent, %d failed", len(entries), success, failed)
	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"total":  len(entries),
			"sent":   success,
			"failed": failed,
			"errors": sendErrors,
		},
	})
}
