package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/lingobot/pkg/models"
)

// TopicRepository handles database operations for topics
type TopicRepository struct {
	db *DB
}

// NewTopicRepository creates a new repository instance
func NewTopicRepository(db *DB) *TopicRepository {
	return &TopicRepository{db: db}
}

// GetAll retrieves all topics ordered by name.
func (r *TopicRepository) GetAll(ctx context.Context) ([]models.Topic, error) {
	var topics []models.Topic
	err := r.db.SelectContext(ctx, &topics, "SELECT * FROM topics ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to get topics: %v", err)
	}
	return topics, nil
}

// GetByID retrieves a topic by its ID.
func (r *TopicRepository) GetByID(ctx context.Context, id int64) (*models.Topic, error) {
	var topic models.Topic
	err := r.db.GetContext(ctx, &topic, "SELECT * FROM topics WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get topic by ID: %v", err)
	}
	return &topic, nil
}

// GetByName retrieves a topic by its name.
func (r *TopicRepository) GetByName(ctx context.Context, name string) (*models.Topic, error) {
	var topic models.Topic
	err := r.db.GetContext(ctx, &topic, "SELECT * FROM topics WHERE name = $1", name)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get topic by name: %v", err)
	}
	return &topic, nil
}

// GetOrCreate finds a topic by name, creating it if needed.
func (r *TopicRepository) GetOrCreate(ctx context.Context, name string) (*models.Topic, error) {
	topic, err := r.GetByName(ctx, name)
	if err == nil {
		return topic, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	if r.db.isPostgres() {
		topic = &models.Topic{Name: name}
		err = r.db.QueryRowContext(ctx,
			"INSERT INTO topics (name) VALUES ($1) RETURNING id, created_at",
			name).Scan(&topic.ID, &topic.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to create topic: %v", err)
		}
		return topic, nil
	}

	result, err := r.db.ExecContext(ctx, "INSERT INTO topics (name) VALUES ($1)", name)
	if err != nil {
		return nil, fmt.Errorf("failed to create topic: %v", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert ID: %v", err)
	}
	return &models.Topic{ID: id, Name: name}, nil
}

// Delete removes a topic.
func (r *TopicRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM topics WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete topic: %v", err)
	}
	return nil
}
