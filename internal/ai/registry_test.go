package ai

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/example/lingobot/pkg/models"
)

func TestStatusRegistrySnapshot(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	reg := NewStatusRegistry()

	until := now.Add(2 * time.Minute)
	cooling := models.Credential{ID: "c1", Provider: models.ProviderOpenAI, Enabled: true, DisabledUntil: &until}
	disabled := models.Credential{ID: "c2", Provider: models.ProviderOpenAI, Enabled: false}
	fresh := models.Credential{ID: "c3", Provider: models.ProviderGemini, Enabled: true}

	reg.ObserveCredentials(models.ProviderOpenAI, []models.Credential{cooling, disabled}, now)
	reg.ObserveCredentials(models.ProviderGemini, []models.Credential{fresh}, now)

	snap := reg.Snapshot()
	assert.Equal(t, 0, snap[models.ProviderOpenAI].Available)
	assert.Equal(t, 1, snap[models.ProviderOpenAI].CoolingDown)
	assert.Equal(t, 1, snap[models.ProviderOpenAI].Disabled)
	assert.Equal(t, 1, snap[models.ProviderGemini].Available)

	reg.RecordFailure(models.ProviderOpenAI, now, errors.New("rate limit"))
	reg.RecordSuccess(models.ProviderGemini, now.Add(time.Second))

	snap = reg.Snapshot()
	assert.Equal(t, now, snap[models.ProviderOpenAI].LastFailure)
	assert.Equal(t, "rate limit", snap[models.ProviderOpenAI].LastError)
	assert.Equal(t, now.Add(time.Second), snap[models.ProviderGemini].LastSuccess)
}
