package ai

import (
	"sync"
	"time"

	"github.com/example/lingobot/pkg/models"
)

// ProviderStatus is an advisory snapshot of one provider's credential pool,
// shown in the bot's key listing. The persisted credential records are
// authoritative; this cache may lag behind them.
type ProviderStatus struct {
	Available   int
	CoolingDown int
	Disabled    int
	LastSuccess time.Time
	LastFailure time.Time
	LastError   string
}

// StatusRegistry tracks advisory provider status for display. It is
// constructed once and injected; it holds no authoritative state.
type StatusRegistry struct {
	mu       sync.Mutex
	statuses map[models.ProviderType]ProviderStatus
}

// NewStatusRegistry creates an empty registry.
func NewStatusRegistry() *StatusRegistry {
	return &StatusRegistry{
		statuses: make(map[models.ProviderType]ProviderStatus),
	}
}

// ObserveCredentials records the usable/cooling/disabled split for a
// provider's credential pool as of the given time.
func (r *StatusRegistry) ObserveCredentials(provider models.ProviderType, creds []models.Credential, now time.Time) {
	var available, cooling, disabled int
	for _, c := range creds {
		switch {
		case !c.Enabled:
			disabled++
		case !c.Usable(now):
			cooling++
		default:
			available++
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.statuses[provider]
	s.Available = available
	s.CoolingDown = cooling
	s.Disabled = disabled
	r.statuses[provider] = s
}

// RecordSuccess notes a completed request for a provider.
func (r *StatusRegistry) RecordSuccess(provider models.ProviderType, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.statuses[provider]
	s.LastSuccess = now
	s.LastError = ""
	r.statuses[provider] = s
}

// RecordFailure notes a failed request for a provider.
func (r *StatusRegistry) RecordFailure(provider models.ProviderType, now time.Time, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.statuses[provider]
	s.LastFailure = now
	if err != nil {
		s.LastError = err.Error()
	}
	r.statuses[provider] = s
}

// Snapshot returns a copy of the current per-provider statuses.
func (r *StatusRegistry) Snapshot() map[models.ProviderType]ProviderStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[models.ProviderType]ProviderStatus, len(r.statuses))
	for k, v := range r.statuses {
		out[k] = v
	}
	return out
}
