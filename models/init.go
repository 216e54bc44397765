package models

import "gorm.io/gorm"

// Migrate creates or updates the schema for every model
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&WaitlistEntry{},
		&EmailDraft{},
		&EmailTemplate{},
		&EmailLog{},
		&SequenceConfig{},
		&Feedback{},
	)
}

// SeedSequenceDefaults installs the default nurturing sequence steps. Existing
// rows are left untouched so operator edits survive restarts.
func SeedSequenceDefaults(db *gorm.DB) error {
	defaultSteps := []SequenceConfig{
		{
			Step:              1,
			DaysAfterPrevious: 3,
			TemplateKey:       "sequence_step_1",
			IsActive:          true,
			Description:       "Welcome follow-up: what to expect from the app",
		},
		{
			Step:              2,
			DaysAfterPrevious: 5,
			TemplateKey:       "sequence_step_2",
			IsActive:          true,
			Description:       "A first guided reflection while they wait",
		},
		{
			Step:              3,
			DaysAfterPrevious: 7,
			TemplateKey:       "sequence_step_3",
			IsActive:          true,
			Description:       "Reminder of the early-access code and launch timeline",
		},
	}
	for _, step := range defaultSteps {
		if err := db.FirstOrCreate(&step, "step = ?", step.Step).Error; err != nil {
			return err
		}
	}
	return nil
}
