package models

import (
	"time"

	"gorm.io/gorm"
)

// Draft lifecycle states
const (
	StatusDraft     = "draft"
	StatusApproved  = "approved"
	StatusScheduled = "scheduled"
	StatusSending   = "sending"
	StatusSent      = "sent"
	StatusCancelled = "cancelled"
)

// Email content types
const (
	TypeSequence         = "sequence"
	TypeBroadcast        = "broadcast"
	TypeGospelReflection = "gospel_reflection"
	TypePopeWords        = "pope_words"
	TypeNews             = "news"
	TypeLaunch           = "launch"
)

// Draft content origin
const (
	SourceManual      = "manual"
	SourceAIGenerated = "ai_generated"
	SourceTemplate    = "template"
)

// EmailTypes lists every valid draft/template content type.
var EmailTypes = []string{
	TypeSequence, TypeBroadcast, TypeGospelReflection,
	TypePopeWords, TypeNews, TypeLaunch,
}

// ValidEmailType reports whether t is a known content type.
func ValidEmailType(t string) bool {
	for _, known := range EmailTypes {
		if t == known {
			return true
		}
	}
	return false
}

// TargetAudience is the declarative recipient filter attached to a draft.
// Present clauses are ANDed together; unsubscribed entries are always
// excluded regardless of the filter. With All set, every other clause is
// ignored.
type TargetAudience struct {
	All              bool       `json:"all,omitempty"`
	SequenceStep     *int       `json:"sequence_step,omitempty"`
	SequenceStepGTE  *int       `json:"sequence_step_gte,omitempty"`
	SequenceStepLTE  *int       `json:"sequence_step_lte,omitempty"`
	RegisteredBefore *time.Time `json:"registered_before,omitempty"`
	RegisteredAfter  *time.Time `json:"registered_after,omitempty"`
	Notified         *bool      `json:"notified,omitempty"`
}

// EmailDraft represents a one-off, admin-composed campaign email
type EmailDraft struct {
	gorm.Model
	EmailType    string `gorm:"not null;index" json:"email_type"` // sequence, broadcast, gospel_reflection, pope_words, news, launch
	SequenceStep *int   `json:"sequence_step"`

	Subject          string `gorm:"not null" json:"subject"`
	PreviewText      string `json:"preview_text"`
	HTMLContent      string `gorm:"type:text;not null" json:"html_content"`
	PlainTextContent string `gorm:"type:text" json:"plain_text_content"`

	Source   string `gorm:"default:'manual'" json:"source"` // manual, ai_generated, template
	AIPrompt string `gorm:"type:text" json:"ai_prompt"`

	Status       string     `gorm:"default:'draft';index" json:"status"`
	ScheduledFor *time.Time `json:"scheduled_for"`

	TargetAudience TargetAudience `gorm:"type:jsonb;serializer:json" json:"target_audience"`

	// Written once per processing pass, meaningful from "sending" onwards
	RecipientsCount int `gorm:"default:0" json:"recipients_count"`
	SentCount       int `gorm:"default:0" json:"sent_count"`
	FailedCount     int `gorm:"default:0" json:"failed_count"`

	ApprovedAt *time.Time `json:"approved_at"`
	ApprovedBy string     `json:"approved_by"`
	SentAt     *time.Time `json:"sent_at"`
}
