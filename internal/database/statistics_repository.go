package database

import (
	"context"
	"fmt"
	"time"

	"github.com/example/lingobot/pkg/models"
)

// StatisticsRepository computes learning statistics from review records
type StatisticsRepository struct {
	db *DB
}

// NewStatisticsRepository creates a new repository instance
func NewStatisticsRepository(db *DB) *StatisticsRepository {
	return &StatisticsRepository{db: db}
}

// GetForUser aggregates a user's review progress into one summary.
func (r *StatisticsRepository) GetForUser(ctx context.Context, userID int64, now time.Time) (*models.Statistics, error) {
	stats := models.Statistics{UserID: userID}

	err := r.db.GetContext(ctx, &stats.TotalWords,
		"SELECT COUNT(*) FROM user_progress WHERE user_id = $1", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count words in progress: %v", err)
	}

	err = r.db.GetContext(ctx, &stats.DueToday,
		"SELECT COUNT(*) FROM user_progress WHERE user_id = $1 AND next_review_date <= $2",
		userID, now.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to count due words: %v", err)
	}

	err = r.db.GetContext(ctx, &stats.KnownWords,
		"SELECT COUNT(*) FROM user_progress WHERE user_id = $1 AND status = $2",
		userID, string(models.StatusKnown))
	if err != nil {
		return nil, fmt.Errorf("failed to count known words: %v", err)
	}

	err = r.db.GetContext(ctx, &stats.LearningWords,
		"SELECT COUNT(*) FROM user_progress WHERE user_id = $1 AND status = $2",
		userID, string(models.StatusLearning))
	if err != nil {
		return nil, fmt.Errorf("failed to count learning words: %v", err)
	}

	err = r.db.GetContext(ctx, &stats.AvgEaseFactor,
		"SELECT COALESCE(AVG(ease_factor), 2.5) FROM user_progress WHERE user_id = $1", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get average ease factor: %v", err)
	}

	return &stats, nil
}
