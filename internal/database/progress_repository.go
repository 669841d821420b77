package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/lingobot/pkg/models"
)

// ProgressRepository handles database operations for review records
type ProgressRepository struct {
	db *DB
}

// NewProgressRepository creates a new repository instance
func NewProgressRepository(db *DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// GetByUserAndWord returns the review record for a specific user and word.
// A missing record is reported via sql.ErrNoRows so callers can create one.
func (r *ProgressRepository) GetByUserAndWord(ctx context.Context, userID, wordID int64) (*models.ReviewRecord, error) {
	var rec models.ReviewRecord
	err := r.db.GetContext(ctx, &rec,
		"SELECT * FROM user_progress WHERE user_id = $1 AND word_id = $2", userID, wordID)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review record: %v", err)
	}
	return &rec, nil
}

// ListForUser returns all review records for a user.
func (r *ProgressRepository) ListForUser(ctx context.Context, userID int64) ([]models.ReviewRecord, error) {
	var recs []models.ReviewRecord
	err := r.db.SelectContext(ctx, &recs,
		"SELECT * FROM user_progress WHERE user_id = $1 ORDER BY next_review_date", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list review records: %v", err)
	}
	return recs, nil
}

// ListDueForUser returns records due for review at the given time, most
// overdue first. Final ordering (new words first) is the scheduler's job.
func (r *ProgressRepository) ListDueForUser(ctx context.Context, userID int64, now time.Time) ([]models.ReviewRecord, error) {
	var recs []models.ReviewRecord
	err := r.db.SelectContext(ctx, &recs, `
		SELECT * FROM user_progress
		WHERE user_id = $1 AND next_review_date <= $2
		ORDER BY next_review_date, word_id
	`, userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to get due records: %v", err)
	}
	return recs, nil
}

// CountDueForUser returns how many words are due for review.
func (r *ProgressRepository) CountDueForUser(ctx context.Context, userID int64, now time.Time) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM user_progress WHERE user_id = $1 AND next_review_date <= $2",
		userID, now)
	if err != nil {
		return 0, fmt.Errorf("failed to count due records: %v", err)
	}
	return count, nil
}

// Upsert creates or updates a review record for a user/word pair.
func (r *ProgressRepository) Upsert(ctx context.Context, rec *models.ReviewRecord) error {
	if r.db.isPostgres() {
		query := `
			INSERT INTO user_progress (
				user_id, word_id, interval_days, ease_factor, repetitions,
				last_quality, status, last_review_date, next_review_date
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (user_id, word_id) DO UPDATE SET
				interval_days = EXCLUDED.interval_days,
				ease_factor = EXCLUDED.ease_factor,
				repetitions = EXCLUDED.repetitions,
				last_quality = EXCLUDED.last_quality,
				status = EXCLUDED.status,
				last_review_date = EXCLUDED.last_review_date,
				next_review_date = EXCLUDED.next_review_date,
				updated_at = NOW()
			RETURNING id
		`
		return r.db.QueryRowContext(ctx, query,
			rec.UserID,
			rec.WordID,
			rec.IntervalDays,
			rec.EaseFactor,
			rec.Repetitions,
			rec.LastQuality,
			string(rec.Status),
			rec.LastReviewDate,
			rec.NextReviewDate,
		).Scan(&rec.ID)
	}

	// SQLite: ON CONFLICT upsert without RETURNING, then read the ID back
	query := `
		INSERT INTO user_progress (
			user_id, word_id, interval_days, ease_factor, repetitions,
			last_quality, status, last_review_date, next_review_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, word_id) DO UPDATE SET
			interval_days = excluded.interval_days,
			ease_factor = excluded.ease_factor,
			repetitions = excluded.repetitions,
			last_quality = excluded.last_quality,
			status = excluded.status,
			last_review_date = excluded.last_review_date,
			next_review_date = excluded.next_review_date,
			updated_at = CURRENT_TIMESTAMP
	`
	_, err := r.db.ExecContext(ctx, query,
		rec.UserID,
		rec.WordID,
		rec.IntervalDays,
		rec.EaseFactor,
		rec.Repetitions,
		rec.LastQuality,
		string(rec.Status),
		rec.LastReviewDate,
		rec.NextReviewDate,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert review record: %v", err)
	}

	return r.db.QueryRowContext(ctx,
		"SELECT id FROM user_progress WHERE user_id = $1 AND word_id = $2",
		rec.UserID, rec.WordID,
	).Scan(&rec.ID)
}

// Delete removes a review record.
func (r *ProgressRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM user_progress WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete review record: %v", err)
	}
	return nil
}
