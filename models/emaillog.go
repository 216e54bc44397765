package models

import "gorm.io/gorm"

// Delivery log outcomes
const (
	LogStatusSent    = "sent"
	LogStatusFailed  = "failed"
	LogStatusBounced = "bounced"
)

// EmailLog is an append-only record of a single send attempt. Entries are
// never updated after creation; the CreatedAt timestamp doubles as the send
// time.
type EmailLog struct {
	gorm.Model
	DraftID    *uint `gorm:"index" json:"draft_id"`
	WaitlistID *uint `gorm:"index" json:"waitlist_id"`

	EmailTo string `gorm:"not null" json:"email_to"`
	Subject string `json:"subject"`

	Status       string `gorm:"not null" json:"status"` // sent, failed, bounced
	ErrorMessage string `json:"error_message"`
	ResendID     string `json:"resend_id"` // provider reference id
}
