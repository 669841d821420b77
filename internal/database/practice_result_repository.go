package database

import (
	"context"
	"fmt"

	"github.com/example/lingobot/pkg/models"
)

// PracticeResultRepository handles database operations for practice sessions
type PracticeResultRepository struct {
	db *DB
}

// NewPracticeResultRepository creates a new repository instance
func NewPracticeResultRepository(db *DB) *PracticeResultRepository {
	return &PracticeResultRepository{db: db}
}

// Create inserts a new practice result.
func (r *PracticeResultRepository) Create(ctx context.Context, result *models.PracticeResult) error {
	if r.db.isPostgres() {
		query := `
			INSERT INTO practice_results (user_id, practice_type, total_words, correct_words, duration)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at
		`
		return r.db.QueryRowContext(ctx, query,
			result.UserID,
			result.PracticeType,
			result.TotalWords,
			result.CorrectWords,
			result.Duration,
		).Scan(&result.ID, &result.CreatedAt)
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO practice_results (user_id, practice_type, total_words, correct_words, duration)
		VALUES ($1, $2, $3, $4, $5)
	`,
		result.UserID,
		result.PracticeType,
		result.TotalWords,
		result.CorrectWords,
		result.Duration,
	)
	if err != nil {
		return fmt.Errorf("failed to create practice result: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %v", err)
	}
	result.ID = id
	return nil
}

// GetRecentForUser returns a user's latest practice sessions, newest first.
func (r *PracticeResultRepository) GetRecentForUser(ctx context.Context, userID int64, limit int) ([]models.PracticeResult, error) {
	var results []models.PracticeResult
	err := r.db.SelectContext(ctx, &results, `
		SELECT * FROM practice_results
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get practice results: %v", err)
	}
	return results, nil
}
