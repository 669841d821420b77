package models

// Statistics summarizes a user's learning progress
type Statistics struct {
	UserID        int64   `json:"user_id" db:"user_id"`
	TotalWords    int     `json:"total_words" db:"total_words"`
	DueToday      int     `json:"due_today" db:"due_today"`
	KnownWords    int     `json:"known_words" db:"known_words"`
	LearningWords int     `json:"learning_words" db:"learning_words"`
	AvgEaseFactor float64 `json:"avg_ease_factor" db:"avg_ease_factor"`
}
