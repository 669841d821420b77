package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/lingobot/pkg/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := ConnectSQLiteInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *DB, id int64) {
	t.Helper()
	_, err := db.Exec(
		"INSERT INTO users (telegram_id, username) VALUES ($1, $2)", id, "tester")
	require.NoError(t, err)
}

func TestCredentialListByProviderOrder(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, 1)
	repo := NewCredentialRepository(db)
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, label := range []string{"first", "second", "third"} {
		cred := &models.Credential{
			UserID:    1,
			Provider:  models.ProviderOpenAI,
			APIKey:    "sk-" + label,
			Label:     label,
			Enabled:   true,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Create(ctx, cred))
	}

	// A gemini key must not show up in the openai list
	require.NoError(t, repo.Create(ctx, &models.Credential{
		UserID: 1, Provider: models.ProviderGemini, APIKey: "g-key", Enabled: true,
		CreatedAt: base,
	}))

	creds, err := repo.ListByProvider(ctx, 1, models.ProviderOpenAI)
	require.NoError(t, err)
	require.Len(t, creds, 3)
	assert.Equal(t, "first", creds[0].Label)
	assert.Equal(t, "second", creds[1].Label)
	assert.Equal(t, "third", creds[2].Label)
}

func TestCredentialCreateRejectsUnknownProvider(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, 1)
	repo := NewCredentialRepository(db)

	err := repo.Create(context.Background(), &models.Credential{
		UserID: 1, Provider: "llama", APIKey: "x", Enabled: true,
	})
	assert.Error(t, err)
}

func TestCredentialMarkFailedIdempotent(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, 1)
	repo := NewCredentialRepository(db)
	ctx := context.Background()

	cred := &models.Credential{
		UserID: 1, Provider: models.ProviderOpenAI, APIKey: "sk-x", Enabled: true,
	}
	require.NoError(t, repo.Create(ctx, cred))

	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	until := now.Add(5 * time.Minute)
	require.NoError(t, repo.MarkFailed(ctx, cred.ID, now, until))
	require.NoError(t, repo.MarkFailed(ctx, cred.ID, now, until))

	got, err := repo.GetByID(ctx, cred.ID)
	require.NoError(t, err)
	require.NotNil(t, got.DisabledUntil)
	assert.True(t, got.DisabledUntil.Equal(until))
	require.NotNil(t, got.LastFailureAt)
	assert.False(t, got.Usable(now))
	assert.True(t, got.Usable(until.Add(time.Second)))
}

func TestCredentialSetEnabled(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, 1)
	repo := NewCredentialRepository(db)
	ctx := context.Background()

	cred := &models.Credential{
		UserID: 1, Provider: models.ProviderGemini, APIKey: "g-x", Enabled: true,
	}
	require.NoError(t, repo.Create(ctx, cred))
	require.NoError(t, repo.SetEnabled(ctx, cred.ID, false))

	got, err := repo.GetByID(ctx, cred.ID)
	require.NoError(t, err)
	assert.False(t, got.Enabled)
	assert.False(t, got.Usable(time.Now()))
}
