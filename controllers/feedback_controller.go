package controller

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/boscogd/waitlist/models"
	"github.com/boscogd/waitlist/utils"
)

const maxFeedbackFieldLength = 2000

type FeedbackController struct {
	DB         *gorm.DB
	Mailer     utils.Mailer
	Logger     *log.Logger
	AdminEmail string
	SiteURL    string
}

func NewFeedbackController(db *gorm.DB, mailer utils.Mailer, adminEmail, siteURL string, logger *log.Logger) *FeedbackController {
	return &FeedbackController{
		DB:         db,
		Mailer:     mailer,
		Logger:     logger,
		AdminEmail: adminEmail,
		SiteURL:    siteURL,
	}
}

// SubmitFeedback stores one feedback submission and notifies the admin inbox
func (fc *FeedbackController) SubmitFeedback(c *fiber.Ctx) error {
	var input struct {
		Rating             *int   `json:"rating"`
		WhatYouLike        string `json:"what_you_like"`
		WhatYouDontLike    string `json:"what_you_dont_like"`
		WhatToImprove      string `json:"what_to_improve"`
		AdditionalComments string `json:"additional_comments"`
	}

	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	input.WhatYouLike = strings.TrimSpace(input.WhatYouLike)
	input.WhatYouDontLike = strings.TrimSpace(input.WhatYouDontLike)
	input.WhatToImprove = strings.TrimSpace(input.WhatToImprove)
	input.AdditionalComments = strings.TrimSpace(input.AdditionalComments)

	if input.Rating == nil &&
		input.WhatYouLike == "" && input.WhatYouDontLike == "" &&
		input.WhatToImprove == "" && input.AdditionalComments == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Please fill in at least one field or provide a rating",
		})
	}
	if input.Rating != nil && (*input.Rating < 1 || *input.Rating > 5) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Rating must be between 1 and 5",
		})
	}
	for _, field := range []string{input.WhatYouLike, input.WhatYouDontLike, input.WhatToImprove, input.AdditionalComments} {
		if len(field) > maxFeedbackFieldLength {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Each field may not exceed 2000 characters",
			})
		}
	}

	feedback := models.Feedback{
		Rating:             input.Rating,
		WhatYouLike:        input.WhatYouLike,
		WhatYouDontLike:    input.WhatYouDontLike,
		WhatToImprove:      input.WhatToImprove,
		AdditionalComments: input.AdditionalComments,
	}
	if err := fc.DB.Create(&feedback).Error; err != nil {
		fc.Logger.Printf("Failed to store feedback: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save feedback, please try again",
		})
	}

	// Notification is best-effort and must not delay or fail the submission
	go func(fb models.Feedback) {
		if _, err := utils.SendFeedbackNotification(fc.Mailer, fb, fc.AdminEmail, fc.SiteURL); err != nil {
			fc.Logger.Printf("Failed to send feedback notification: %v", err)
		}
	}(feedback)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Thank you for your feedback!",
	})
}

// ListFeedback returns submissions for the admin console, newest first
func (fc *FeedbackController) ListFeedback(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("pageSize", 20)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var total int64
	if err := fc.DB.Model(&models.Feedback{}).Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch feedback",
		})
	}

	var feedback []models.Feedback
	if err := fc.DB.
		Order("created_at desc").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&feedback).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch feedback",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    feedback,
		"pagination": fiber.Map{
			"total":    total,
			"page":     page,
			"pageSize": pageSize,
		},
	})
}
