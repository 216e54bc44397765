package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/boscogd/waitlist/models"
	"github.com/boscogd/waitlist/utils"
)

type TemplateController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewTemplateController(db *gorm.DB, logger *log.Logger) *TemplateController {
	return &TemplateController{
		DB:     db,
		Logger: logger,
	}
}

// ListTemplates returns templates ordered by sequence step, then name
func (tc *TemplateController) ListTemplates(c *fiber.Ctx) error {
	query := tc.DB.Model(&models.EmailTemplate{})
	if emailType := c.Query("email_type"); emailType != "" {
		query = query.Where("email_type = ?", emailType)
	}
	if c.Query("active") == "true" {
		query = query.Where("is_active = ?", true)
	}

	var templates []models.EmailTemplate
	if err := query.
		Order("sequence_step asc NULLS LAST, name asc").
		Find(&templates).Error; err != nil {
		tc.Logger.Printf("Failed to list templates: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch templates",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    templates,
	})
}

// CreateTemplate stores a reusable template under a unique key
func (tc *TemplateController) CreateTemplate(c *fiber.Ctx) error {
	var input struct {
		TemplateKey  string `json:"template_key" validate:"required"`
		Name         string `json:"name" validate:"required"`
		Description  string `json:"description"`
		EmailType    string `json:"email_type" validate:"required"`
		SequenceStep *int   `json:"sequence_step"`
		Subject      string `json:"subject" validate:"required"`
		PreviewText  string `json:"preview_text"`
		HTMLContent  string `json:"html_content" validate:"required"`
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
	if !models.ValidEmailType(input.EmailType) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid email_type",
		})
	}

	var existing models.EmailTemplate
	if err := tc.DB.Where("template_key = ?", input.TemplateKey).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "A template with this key already exists",
		})
	}

	template := models.EmailTemplate{
		TemplateKey:  input.TemplateKey,
		Name:         input.Name,
		Description:  input.Description,
		EmailType:    input.EmailType,
		SequenceStep: input.SequenceStep,
		Subject:      input.Subject,
		PreviewText:  input.PreviewText,
		HTMLContent:  input.HTMLContent,
		IsActive:     true,
	}
	if err := tc.DB.Create(&template).Error; err != nil {
		tc.Logger.Printf("Failed to create template: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create template",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    template,
	})
}
