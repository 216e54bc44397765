package models

import "gorm.io/gorm"

// EmailTemplate is reusable content looked up by key at send time. A
// deactivated template fails lookups the same way a missing one does.
type EmailTemplate struct {
	gorm.Model
	TemplateKey  string `gorm:"uniqueIndex;not null" json:"template_key"`
	Name         string `gorm:"not null" json:"name"`
	Description  string `json:"description"`
	EmailType    string `gorm:"not null" json:"email_type"`
	SequenceStep *int   `json:"sequence_step"`

	Subject     string `gorm:"not null" json:"subject"`
	PreviewText string `json:"preview_text"`
	HTMLContent string `gorm:"type:text;not null" json:"html_content"`

	IsActive bool `gorm:"default:true" json:"is_active"`
}

// SequenceConfig defines one step of the nurturing sequence. Only active
// steps participate; step numbers form the total order of the sequence.
type SequenceConfig struct {
	Step              int    `gorm:"primaryKey" json:"step"`
	DaysAfterPrevious int    `gorm:"not null" json:"days_after_previous"`
	TemplateKey       string `gorm:"not null" json:"template_key"`
	IsActive          bool   `gorm:"default:true" json:"is_active"`
	Description       string `json:"description"`
}
