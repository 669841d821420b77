package models

import "time"

// ReviewStatus describes how far along a word is in the learning cycle.
type ReviewStatus string

const (
	// StatusNew means the word has never been graded
	StatusNew ReviewStatus = "new"
	// StatusLearning means the word has one or two successful reviews
	StatusLearning ReviewStatus = "learning"
	// StatusKnown means the word has at least three consecutive successful reviews
	StatusKnown ReviewStatus = "known"
)

// ReviewRecord tracks a user's SM-2 scheduling state for a single word.
type ReviewRecord struct {
	ID             int64        `json:"id" db:"id"`
	UserID         int64        `json:"user_id" db:"user_id"`
	WordID         int64        `json:"word_id" db:"word_id"`
	IntervalDays   int          `json:"interval_days" db:"interval_days"`     // Current spacing interval in days
	EaseFactor     float64      `json:"ease_factor" db:"ease_factor"`         // SM-2 EF, never below 1.3
	Repetitions    int          `json:"repetitions" db:"repetitions"`         // Consecutive successful reviews
	LastQuality    int          `json:"last_quality" db:"last_quality"`       // 0-5 grade of the most recent review
	Status         ReviewStatus `json:"status" db:"status"`
	LastReviewDate time.Time    `json:"last_review_date" db:"last_review_date"`
	NextReviewDate time.Time    `json:"next_review_date" db:"next_review_date"`
	CreatedAt      time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at" db:"updated_at"`
}

// Due reports whether the record is due for review at the given time.
func (r *ReviewRecord) Due(now time.Time) bool {
	return !r.NextReviewDate.After(now)
}
