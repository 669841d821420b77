package ai

import (
	"context"

	"github.com/example/lingobot/pkg/models"
)

// Request is a single text-generation request.
type Request struct {
	// UserID selects whose credentials the router may use
	UserID int64
	// System is the optional system prompt
	System string
	// Prompt is the user-facing prompt text
	Prompt string
	// MaxTokens caps the response length; 0 uses the provider default
	MaxTokens int
	// Temperature controls sampling; 0 uses the provider default
	Temperature float32
	// JSONMode asks the provider for a JSON response. The router still
	// returns raw text; parsing is the caller's responsibility.
	JSONMode bool
}

// Completion is a successful generation, tagged with the provider that
// produced it.
type Completion struct {
	Text     string
	Provider models.ProviderType
}

// provider is one external text-generation service. Implementations build
// a request from a credential's key material and detect success vs failure
// from the response; they carry no credential state of their own.
type provider interface {
	Type() models.ProviderType

	// Complete issues a synchronous generation request.
	Complete(ctx context.Context, apiKey string, req Request) (string, error)

	// CompleteStream issues a streaming request, forwarding each text
	// chunk to onChunk as it arrives. A non-nil return after chunks were
	// forwarded means the stream broke mid-way.
	CompleteStream(ctx context.Context, apiKey string, req Request, onChunk func(string) error) error
}
