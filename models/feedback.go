package models

import "gorm.io/gorm"

// Feedback stores one MVP feedback submission
type Feedback struct {
	gorm.Model
	Rating             *int   `json:"rating"` // 1-5 when present
	WhatYouLike        string `gorm:"type:text" json:"what_you_like"`
	WhatYouDontLike    string `gorm:"type:text" json:"what_you_dont_like"`
	WhatToImprove      string `gorm:"type:text" json:"what_to_improve"`
	AdditionalComments string `gorm:"type:text" json:"additional_comments"`
}
