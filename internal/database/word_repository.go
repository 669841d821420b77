package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/lingobot/pkg/models"
)

// WordRepository handles database operations for words
type WordRepository struct {
	db *DB
}

// NewWordRepository creates a new repository instance
func NewWordRepository(db *DB) *WordRepository {
	return &WordRepository{db: db}
}

// GetAll returns all words
func (r *WordRepository) GetAll(ctx context.Context) ([]models.Word, error) {
	var words []models.Word
	err := r.db.SelectContext(ctx, &words, "SELECT * FROM words ORDER BY word")
	if err != nil {
		return nil, fmt.Errorf("failed to get words: %v", err)
	}
	return words, nil
}

// GetByID returns a word by ID
func (r *WordRepository) GetByID(ctx context.Context, id int64) (*models.Word, error) {
	var word models.Word
	err := r.db.GetContext(ctx, &word, "SELECT * FROM words WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get word by ID: %v", err)
	}
	return &word, nil
}

// GetByIDs returns the words for a set of IDs, keyed by ID.
func (r *WordRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]models.Word, error) {
	result := make(map[int64]models.Word, len(ids))
	for _, id := range ids {
		w, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		result[id] = *w
	}
	return result, nil
}

// GetByWordAndTopic returns a word by its text within a topic.
func (r *WordRepository) GetByWordAndTopic(ctx context.Context, word string, topicID int64) (*models.Word, error) {
	var w models.Word
	err := r.db.GetContext(ctx, &w,
		"SELECT * FROM words WHERE word = $1 AND topic_id = $2", word, topicID)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get word: %v", err)
	}
	return &w, nil
}

// GetByTopic returns words for a specific topic
func (r *WordRepository) GetByTopic(ctx context.Context, topicID int64) ([]models.Word, error) {
	var words []models.Word
	err := r.db.SelectContext(ctx, &words,
		"SELECT * FROM words WHERE topic_id = $1 ORDER BY word", topicID)
	if err != nil {
		return nil, fmt.Errorf("failed to get words by topic: %v", err)
	}
	return words, nil
}

// GetRandom returns up to count random words, used for quiz distractors.
func (r *WordRepository) GetRandom(ctx context.Context, count int) ([]models.Word, error) {
	var words []models.Word
	err := r.db.SelectContext(ctx, &words,
		"SELECT * FROM words ORDER BY RANDOM() LIMIT $1", count)
	if err != nil {
		return nil, fmt.Errorf("failed to get random words: %v", err)
	}
	return words, nil
}

// Create inserts a new word
func (r *WordRepository) Create(ctx context.Context, word *models.Word) error {
	if r.db.isPostgres() {
		query := `
			INSERT INTO words (word, translation, context, examples, topic_id, difficulty, pronunciation)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, created_at, updated_at
		`
		return r.db.QueryRowContext(ctx, query,
			word.Word,
			word.Translation,
			word.Context,
			word.Examples,
			word.TopicID,
			word.Difficulty,
			word.Pronunciation,
		).Scan(&word.ID, &word.CreatedAt, &word.UpdatedAt)
	}

	// SQLite has no RETURNING, fetch the ID separately
	query := `
		INSERT INTO words (word, translation, context, examples, topic_id, difficulty, pronunciation)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	result, err := r.db.ExecContext(ctx, query,
		word.Word,
		word.Translation,
		word.Context,
		word.Examples,
		word.TopicID,
		word.Difficulty,
		word.Pronunciation,
	)
	if err != nil {
		return fmt.Errorf("failed to create word: %v", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %v", err)
	}
	word.ID = id
	return nil
}

// Update modifies an existing word
func (r *WordRepository) Update(ctx context.Context, word *models.Word) error {
	now := "CURRENT_TIMESTAMP"
	if r.db.isPostgres() {
		now = "NOW()"
	}

	query := `
		UPDATE words SET
			word = $1,
			translation = $2,
			context = $3,
			examples = $4,
			topic_id = $5,
			difficulty = $6,
			pronunciation = $7,
			updated_at = ` + now + `
		WHERE id = $8
	`
	_, err := r.db.ExecContext(ctx, query,
		word.Word,
		word.Translation,
		word.Context,
		word.Examples,
		word.TopicID,
		word.Difficulty,
		word.Pronunciation,
		word.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update word: %v", err)
	}
	return nil
}

// Delete removes a word
func (r *WordRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM words WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete word: %v", err)
	}
	return nil
}

// Search finds words by pattern matching on the word or its translation.
func (r *WordRepository) Search(ctx context.Context, query string) ([]models.Word, error) {
	var words []models.Word
	pattern := "%" + query + "%"
	err := r.db.SelectContext(ctx, &words, `
		SELECT * FROM words
		WHERE LOWER(word) LIKE LOWER($1) OR LOWER(translation) LIKE LOWER($1)
		ORDER BY word
	`, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search words: %v", err)
	}
	return words, nil
}
