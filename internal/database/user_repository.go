package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/lingobot/pkg/models"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new repository instance
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID returns a user by Telegram ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, "SELECT * FROM users WHERE telegram_id = $1", id)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %v", err)
	}
	return &user, nil
}

// GetOrCreate returns the user record, registering the user on first contact.
func (r *UserRepository) GetOrCreate(ctx context.Context, user *models.User) (*models.User, error) {
	existing, err := r.GetByID(ctx, user.ID)
	if err == nil {
		return existing, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	query := `
		INSERT INTO users (telegram_id, username, first_name, last_name, is_admin,
			notification_enabled, notification_hour, words_per_day)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.db.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.FirstName,
		user.LastName,
		user.IsAdmin,
		user.NotificationEnabled,
		user.NotificationHour,
		user.WordsPerDay,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %v", err)
	}
	return r.GetByID(ctx, user.ID)
}

// Update modifies user settings.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	now := "CURRENT_TIMESTAMP"
	if r.db.isPostgres() {
		now = "NOW()"
	}

	query := `
		UPDATE users SET
			username = $1,
			first_name = $2,
			last_name = $3,
			is_admin = $4,
			notification_enabled = $5,
			notification_hour = $6,
			words_per_day = $7,
			updated_at = ` + now + `
		WHERE telegram_id = $8
	`
	_, err := r.db.ExecContext(ctx, query,
		user.Username,
		user.FirstName,
		user.LastName,
		user.IsAdmin,
		user.NotificationEnabled,
		user.NotificationHour,
		user.WordsPerDay,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %v", err)
	}
	return nil
}

// GetUsersForNotification returns users with notifications enabled for the given hour.
func (r *UserRepository) GetUsersForNotification(ctx context.Context, hour int) ([]models.User, error) {
	var users []models.User
	err := r.db.SelectContext(ctx, &users,
		"SELECT * FROM users WHERE notification_enabled = $1 AND notification_hour = $2",
		true, hour)
	if err != nil {
		return nil, fmt.Errorf("failed to get users for notification: %v", err)
	}
	return users, nil
}

// Delete removes a user.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE telegram_id = $1", id)
	return err
}
