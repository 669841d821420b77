package models

import "time"

// Word represents a vocabulary entry to be learned
type Word struct {
	ID            int64     `json:"id" db:"id"`
	Word          string    `json:"word" db:"word"`
	Translation   string    `json:"translation" db:"translation"`
	Context       string    `json:"context" db:"context"` // Example sentence showing usage
	Examples      string    `json:"examples" db:"examples"`
	TopicID       int64     `json:"topic_id" db:"topic_id"`
	Difficulty    int       `json:"difficulty" db:"difficulty"` // 1-5 scale of difficulty
	Pronunciation string    `json:"pronunciation" db:"pronunciation"` // Optional: URL to audio pronunciation
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
