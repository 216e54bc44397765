package controller

import (
	"log"
	"math"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/boscogd/waitlist/models"
	"github.com/boscogd/waitlist/utils"
)

type DraftController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewDraftController(db *gorm.DB, logger *log.Logger) *DraftController {
	return &DraftController{
		DB:     db,
		Logger: logger,
	}
}

// ListDrafts returns drafts filtered by status/type, newest first, paginated
func (dc *DraftController) ListDrafts(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("pageSize", 20)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	query := dc.DB.Model(&models.EmailDraft{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if emailType := c.Query("email_type"); emailType != "" {
		query = query.Where("email_type = ?", emailType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		dc.Logger.Printf("Failed to count drafts: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch drafts",
		})
	}

	var drafts []models.EmailDraft
	if err := query.
		Order("created_at desc").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&drafts).Error; err != nil {
		dc.Logger.Printf("Failed to list drafts: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch drafts",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    drafts,
		"pagination": fiber.Map{
			"total":      total,
			"page":       page,
			"pageSize":   pageSize,
			"totalPages": int(math.Ceil(float64(total) / float64(pageSize))),
		},
	})
}

// CreateDraft stores a new admin-composed draft
func (dc *DraftController) CreateDraft(c *fiber.Ctx) error {
	var input struct {
		EmailType        string                 `json:"email_type" validate:"required"`
		SequenceStep     *int                   `json:"sequence_step"`
		Subject          string                 `json:"subject" validate:"required"`
		PreviewText      string                 `json:"preview_text"`
		HTMLContent      string                 `json:"html_content" validate:"required"`
		PlainTextContent string                 `json:"plain_text_content"`
		Source           string                 `json:"source"`
		ScheduledFor     *time.Time             `json:"scheduled_for"`
		TargetAudience   *models.TargetAudience `json:"target_audience"`
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

	source := input.Source
	if source == "" {
		source = models.SourceManual
	}
	audience := models.TargetAudience{All: true}
	if input.TargetAudience != nil {
		audience = *input.TargetAudience
	}
	status := models.StatusDraft
	if input.ScheduledFor != nil {
		status = models.StatusScheduled
	}

	draft := models.EmailDraft{
		EmailType:        input.EmailType,
		SequenceStep:     input.SequenceStep,
		Subject:          input.Subject,
		PreviewText:      input.PreviewText,
		HTMLContent:      input.HTMLContent,
		PlainTextContent: input.PlainTextContent,
		Source:           source,
		Status:           status,
		ScheduledFor:     input.ScheduledFor,
		TargetAudience:   audience,
	}
	if err := dc.DB.Create(&draft).Error; err != nil {
		dc.Logger.Printf("Failed to create draft: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create draft",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    draft,
	})
}

// GetDraft returns one draft by id
func (dc *DraftController) GetDraft(c *fiber.Ctx) error {
	var draft models.EmailDraft
	if err := dc.DB.First(&draft, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Draft not found",
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    draft,
	})
}

// UpdateDraft applies a partial update; status transitions stamp their
// audit timestamps.
func (dc *DraftController) UpdateDraft(c *fiber.Ctx) error {
	var draft models.EmailDraft
	if err := dc.DB.First(&draft, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Draft not found",
		})
	}

	var input struct {
		EmailType        *string                `json:"email_type"`
		SequenceStep     *int                   `json:"sequence_step"`
		Subject          *string                `json:"subject"`
		PreviewText      *string                `json:"preview_text"`
		HTMLContent      *string                `json:"html_content"`
		PlainTextContent *string                `json:"plain_text_content"`
		Status           *string                `json:"status"`
		ApprovedBy       *string                `json:"approved_by"`
		ScheduledFor     *time.Time             `json:"scheduled_for"`
		TargetAudience   *models.TargetAudience `json:"target_audience"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	updates := map[string]interface{}{}
	if input.EmailType != nil {
		if !models.ValidEmailType(*input.EmailType) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid email_type",
			})
		}
		updates["email_type"] = *input.EmailType
	}
	if input.SequenceStep != nil {
		updates["sequence_step"] = *input.SequenceStep
	}
	if input.Subject != nil {
		updates["subject"] = *input.Subject
	}
	if input.PreviewText != nil {
		updates["preview_text"] = *input.PreviewText
	}
	if input.HTMLContent != nil {
		updates["html_content"] = *input.HTMLContent
	}
	if input.PlainTextContent != nil {
		updates["plain_text_content"] = *input.PlainTextContent
	}
	if input.ScheduledFor != nil {
		updates["scheduled_for"] = *input.ScheduledFor
	}
	if input.TargetAudience != nil {
		updates["target_audience"] = *input.TargetAudience
	}
	if input.Status != nil {
		switch *input.Status {
		case models.StatusDraft, models.StatusApproved, models.StatusScheduled,
			models.StatusSending, models.StatusSent, models.StatusCancelled:
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid status",
			})
		}
		updates["status"] = *input.Status
		if *input.Status == models.StatusApproved {
			updates["approved_at"] = time.Now()
			approvedBy := "admin"
			if input.ApprovedBy != nil {
				approvedBy = *input.ApprovedBy
			}
			updates["approved_by"] = approvedBy
		}
		if *input.Status == models.StatusSent {
			updates["sent_at"] = time.Now()
		}
	}

	if len(updates) > 0 {
		if err := dc.DB.Model(&draft).Updates(updates).Error; err != nil {
			dc.Logger.Printf("Failed to update draft %d: %v", draft.ID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to update draft",
			})
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Draft updated",
		"data":    draft,
	})
}

// DeleteDraft removes a draft unless it is mid-send
func (dc *DraftController) DeleteDraft(c *fiber.Ctx) error {
	var draft models.EmailDraft
	if err := dc.DB.First(&draft, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Draft not found",
		})
	}
	if draft.Status == models.StatusSending {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Draft is currently being sent and cannot be deleted",
		})
	}

	if err := dc.DB.Delete(&draft).Error; err != nil {
		dc.Logger.Printf("Failed to delete draft %d: %v", draft.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete draft",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Draft deleted",
	})
}
