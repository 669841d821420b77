package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/lingobot/pkg/models"
)

// CredentialRepository handles database operations for AI provider credentials
type CredentialRepository struct {
	db *DB
}

// NewCredentialRepository creates a new repository instance
func NewCredentialRepository(db *DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// Create inserts a new credential and assigns its ID.
func (r *CredentialRepository) Create(ctx context.Context, cred *models.Credential) error {
	if !cred.Provider.Valid() {
		return fmt.Errorf("unknown provider type: %s", cred.Provider)
	}
	if cred.ID == "" {
		cred.ID = uuid.NewString()
	}
	if cred.CreatedAt.IsZero() {
		cred.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO credentials (id, user_id, provider, api_key, label, enabled, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		cred.ID,
		cred.UserID,
		string(cred.Provider),
		cred.APIKey,
		cred.Label,
		cred.Enabled,
		cred.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create credential: %v", err)
	}
	return nil
}

// GetByID returns a credential by its ID.
func (r *CredentialRepository) GetByID(ctx context.Context, id string) (*models.Credential, error) {
	var cred models.Credential
	err := r.db.GetContext(ctx, &cred, "SELECT * FROM credentials WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("credential %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credential: %v", err)
	}
	return &cred, nil
}

// ListByUser returns all credentials a user has added, oldest first.
func (r *CredentialRepository) ListByUser(ctx context.Context, userID int64) ([]models.Credential, error) {
	var creds []models.Credential
	err := r.db.SelectContext(ctx, &creds,
		"SELECT * FROM credentials WHERE user_id = $1 ORDER BY created_at, id", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list credentials: %v", err)
	}
	return creds, nil
}

// ListByProvider returns a user's credentials of one provider type in
// insertion order. The router picks the first usable one; there is no
// load balancing across keys of the same type.
func (r *CredentialRepository) ListByProvider(ctx context.Context, userID int64, provider models.ProviderType) ([]models.Credential, error) {
	var creds []models.Credential
	err := r.db.SelectContext(ctx, &creds,
		"SELECT * FROM credentials WHERE user_id = $1 AND provider = $2 ORDER BY created_at, id",
		userID, string(provider))
	if err != nil {
		return nil, fmt.Errorf("failed to list credentials by provider: %v", err)
	}
	return creds, nil
}

// MarkFailed records a request failure: the credential is excluded from
// selection until the cooldown passes. Writing the same cooldown twice is
// harmless, so concurrent markings need no coordination.
func (r *CredentialRepository) MarkFailed(ctx context.Context, id string, failedAt time.Time, disabledUntil time.Time) error {
	query := `
		UPDATE credentials SET last_failure_at = $1, disabled_until = $2
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, failedAt, disabledUntil, id)
	if err != nil {
		return fmt.Errorf("failed to mark credential failed: %v", err)
	}
	return nil
}

// SetEnabled toggles a credential without deleting it.
func (r *CredentialRepository) SetEnabled(ctx context.Context, id string, enabled bool) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE credentials SET enabled = $1 WHERE id = $2", enabled, id)
	if err != nil {
		return fmt.Errorf("failed to toggle credential: %v", err)
	}
	return nil
}

// Delete removes a credential permanently.
func (r *CredentialRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM credentials WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete credential: %v", err)
	}
	return nil
}
