package models

import "time"

// PracticeResult tracks the outcome of a single practice session
type PracticeResult struct {
	ID           int64     `json:"id" db:"id"`
	UserID       int64     `json:"user_id" db:"user_id"`
	PracticeType string    `json:"practice_type" db:"practice_type"` // e.g., "quiz", "story", "translation"
	TotalWords   int       `json:"total_words" db:"total_words"`
	CorrectWords int       `json:"correct_words" db:"correct_words"`
	Duration     int       `json:"duration" db:"duration"` // Duration in seconds
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
