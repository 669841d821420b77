package models

import "time"

// ProviderType identifies which external AI service a credential belongs to.
type ProviderType string

const (
	// ProviderOpenAI is the primary text-generation provider
	ProviderOpenAI ProviderType = "openai"
	// ProviderGemini is the secondary text-generation provider
	ProviderGemini ProviderType = "gemini"
)

// ProviderOrder is the fixed priority order the router walks on each request.
var ProviderOrder = []ProviderType{ProviderOpenAI, ProviderGemini}

// Valid reports whether the provider type is one of the supported services.
func (p ProviderType) Valid() bool {
	return p == ProviderOpenAI || p == ProviderGemini
}

// Credential is a user-supplied API key for one provider type.
// The router is the only writer of LastFailureAt and DisabledUntil.
type Credential struct {
	ID            string       `json:"id" db:"id"`
	UserID        int64        `json:"user_id" db:"user_id"`
	Provider      ProviderType `json:"provider" db:"provider"`
	APIKey        string       `json:"api_key" db:"api_key"`
	Label         string       `json:"label" db:"label"`
	Enabled       bool         `json:"enabled" db:"enabled"`
	LastFailureAt *time.Time   `json:"last_failure_at" db:"last_failure_at"`
	DisabledUntil *time.Time   `json:"disabled_until" db:"disabled_until"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`
}

// Usable reports whether the credential may be selected for a request:
// it must be enabled and not be inside a failure cooldown window.
func (c *Credential) Usable(now time.Time) bool {
	if !c.Enabled {
		return false
	}
	if c.DisabledUntil != nil && c.DisabledUntil.After(now) {
		return false
	}
	return true
}
