package models

import (
	"time"

	"gorm.io/gorm"
)

// WaitlistEntry represents a person registered on the pre-launch waitlist
type WaitlistEntry struct {
	gorm.Model
	Email string `gorm:"uniqueIndex;not null" json:"email"`
	Name  string `gorm:"not null" json:"name"`
	Code  string `gorm:"uniqueIndex;not null" json:"code"` // early-access code, REFUGIO-XXXXX

	// One-time launch announcement
	Notified bool `gorm:"default:false" json:"notified"`

	// Nurturing sequence progress
	EmailSequenceStep int        `gorm:"default:0" json:"email_sequence_step"`
	LastEmailSentAt   *time.Time `json:"last_email_sent_at"`

	Unsubscribed   bool       `gorm:"default:false;index" json:"unsubscribed"`
	UnsubscribedAt *time.Time `json:"unsubscribed_at"`
}
