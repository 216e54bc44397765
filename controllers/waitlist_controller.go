package controller

import (
	"log"
	"time"

	"github.com/badoux/checkmail"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/boscogd/waitlist/models"
	"github.com/boscogd/waitlist/utils"
)

const maxCodeAttempts = 10

type WaitlistController struct {
	DB     *gorm.DB
	Mailer utils.Mailer
	Logger *log.Logger
}

func NewWaitlistController(db *gorm.DB, mailer utils.Mailer, logger *log.Logger) *WaitlistController {
	return &WaitlistController{
		DB:     db,
		Mailer: mailer,
		Logger: logger,
	}
}

// JoinWaitlist registers a new waitlist entry and sends the confirmation email
func (wc *WaitlistController) JoinWaitlist(c *fiber.Ctx) error {
	var input struct {
		Email string `json:"email" validate:"required"`
		Name  string `json:"name" validate:"required,min=2,max=100"`
	}

	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	email := utils.NormalizeEmail(input.Email)
	if err := checkmail.ValidateFormat(email); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid email address",
		})
	}

	// Duplicate signups get their existing code back with a conflict status
	var existing models.WaitlistEntry
	if err := wc.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "This email is already on the waitlist",
			"code":  existing.Code,
		})
	}

	code, err := wc.generateUniqueCode()
	if err != nil {
		wc.Logger.Printf("Failed to generate unique code: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate access code, please try again",
		})
	}

	entry := models.WaitlistEntry{
		Email: email,
		Name:  input.Name,
		Code:  code,
	}
	if err := wc.DB.Create(&entry).Error; err != nil {
		wc.Logger.Printf("Failed to create waitlist entry for %s: %v", email, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to join the waitlist",
		})
	}

	// Confirmation email failures are logged but never fail the signup
	if _, err := utils.SendWaitlistConfirmation(wc.Mailer, entry); err != nil {
		wc.Logger.Printf("Failed to send confirmation to %s: %v", entry.Email, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Welcome to the waitlist!",
		"code":    entry.Code,
	})
}

// CheckWaitlist reports whether an email is already registered
func (wc *WaitlistController) CheckWaitlist(c *fiber.Ctx) error {
	email := utils.NormalizeEmail(c.Query("email"))
	if email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "email query parameter is required",
		})
	}

	var entry models.WaitlistEntry
	if err := wc.DB.Where("email = ?", email).First(&entry).Error; err != nil {
		return c.JSON(fiber.Map{"exists": false})
	}

	return c.JSON(fiber.Map{
		"exists":     true,
		"code":       entry.Code,
		"created_at": entry.CreatedAt,
	})
}

// Unsubscribe marks an entry as unsubscribed when email and code match
func (wc *WaitlistController) Unsubscribe(c *fiber.Ctx) error {
	var input struct {
		Email string `json:"email" validate:"required"`
		Code  string `json:"code" validate:"required"`
	}

	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	var entry models.WaitlistEntry
	if err := wc.DB.
		Where("email = ? AND code = ?", utils.NormalizeEmail(input.Email), input.Code).
		First(&entry).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No matching waitlist entry",
		})
	}

	if !entry.Unsubscribed {
		if err := wc.DB.Model(&entry).Updates(map[string]interface{}{
			"unsubscribed":    true,
			"unsubscribed_at": time.Now(),
		}).Error; err != nil {
			wc.Logger.Printf("Failed to unsubscribe %s: %v", entry.Email, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to unsubscribe",
			})
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "You have been unsubscribed",
	})
}

func (wc *WaitlistController) generateUniqueCode() (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := utils.GenerateWaitlistCode()
		var count int64
		if err := wc.DB.Model(&models.WaitlistEntry{}).
			Where("code = ?", code).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", fiber.NewError(fiber.StatusInternalServerError, "code space exhausted")
}
