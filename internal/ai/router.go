package ai

import (
	"context"
	"log/slog"
	"time"

	"github.com/example/lingobot/pkg/models"
)

// DefaultCooldown is how long a credential sits out after a failed request.
const DefaultCooldown = 5 * time.Minute

// CredentialSource supplies credentials and records their failures. The
// database credential repository implements it.
type CredentialSource interface {
	// ListByProvider returns a user's credentials of one provider type
	// in insertion order.
	ListByProvider(ctx context.Context, userID int64, provider models.ProviderType) ([]models.Credential, error)

	// MarkFailed puts a credential into a failure cooldown.
	MarkFailed(ctx context.Context, id string, failedAt, disabledUntil time.Time) error
}

// Router selects a working credential, calls its provider, and falls back
// across credentials and provider types until one succeeds. Providers are
// tried strictly in models.ProviderOrder, one network call at a time.
type Router struct {
	creds     CredentialSource
	providers map[models.ProviderType]provider
	order     []models.ProviderType
	cooldown  time.Duration
	registry  *StatusRegistry
	logger    *slog.Logger
	now       func() time.Time
}

// Option customizes a Router.
type Option func(*Router)

// WithProvider replaces the client for one provider type. Tests use this
// to substitute fakes.
func WithProvider(p provider) Option {
	return func(r *Router) {
		r.providers[p.Type()] = p
	}
}

// WithCooldown overrides the failure cooldown duration.
func WithCooldown(d time.Duration) Option {
	return func(r *Router) {
		r.cooldown = d
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Router) {
		r.logger = l
	}
}

// WithClock overrides the time source for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Router) {
		r.now = now
	}
}

// NewRouter creates a router over the real provider clients.
func NewRouter(creds CredentialSource, registry *StatusRegistry, opts ...Option) *Router {
	r := &Router{
		creds: creds,
		providers: map[models.ProviderType]provider{
			models.ProviderOpenAI: newOpenAIProvider(),
			models.ProviderGemini: newGeminiProvider(),
		},
		order:    models.ProviderOrder,
		cooldown: DefaultCooldown,
		registry: registry,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// candidate pairs a usable credential with its provider client.
type candidate struct {
	cred models.Credential
	prov provider
}

// candidates walks the provider priority order and collects usable
// credentials, first key of each provider before falling through to the
// next provider type. total counts every stored credential, usable or not,
// so exhaustion can be told apart from an empty pool.
func (r *Router) candidates(ctx context.Context, userID int64) ([]candidate, int, error) {
	now := r.now()
	var out []candidate
	total := 0

	for _, providerType := range r.order {
		prov, ok := r.providers[providerType]
		if !ok {
			continue
		}
		creds, err := r.creds.ListByProvider(ctx, userID, providerType)
		if err != nil {
			return nil, 0, err
		}
		total += len(creds)
		if r.registry != nil {
			r.registry.ObserveCredentials(providerType, creds, now)
		}
		for _, cred := range creds {
			if cred.Usable(now) {
				out = append(out, candidate{cred: cred, prov: prov})
			}
		}
	}
	return out, total, nil
}

// markFailed records the failure on the credential and in the registry.
func (r *Router) markFailed(ctx context.Context, c candidate, err error) {
	now := r.now()
	kind := classifyFailure(err)
	r.logger.Warn("provider request failed",
		"provider", c.prov.Type(),
		"credential_id", c.cred.ID,
		"kind", string(kind),
		"error", err)

	if markErr := r.creds.MarkFailed(ctx, c.cred.ID, now, now.Add(r.cooldown)); markErr != nil {
		r.logger.Error("failed to mark credential",
			"credential_id", c.cred.ID, "error", markErr)
	}
	if r.registry != nil {
		r.registry.RecordFailure(c.prov.Type(), now, err)
	}
}

// Complete returns generated text from the first provider that succeeds.
// Credentials exhausted is a tagged failure, not a panic; storage errors
// propagate unchanged.
func (r *Router) Complete(ctx context.Context, req Request) (*Completion, error) {
	cands, total, err := r.candidates(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, ErrNoCredentials
	}

	for _, c := range cands {
		text, err := c.prov.Complete(ctx, c.cred.APIKey, req)
		if err != nil {
			r.markFailed(ctx, c, err)
			continue
		}
		if r.registry != nil {
			r.registry.RecordSuccess(c.prov.Type(), r.now())
		}
		return &Completion{Text: text, Provider: c.prov.Type()}, nil
	}
	return nil, ErrProvidersExhausted
}

// StreamEventType distinguishes the events on a completion stream.
type StreamEventType string

const (
	// EventChunk carries a piece of generated text
	EventChunk StreamEventType = "chunk"
	// EventRestart means a provider failed mid-stream; the previously
	// streamed partial output is void and the prompt restarts from
	// scratch on the next candidate
	EventRestart StreamEventType = "restart"
	// EventDone closes a successful stream
	EventDone StreamEventType = "done"
	// EventFailed closes the stream after all candidates failed
	EventFailed StreamEventType = "failed"
)

// StreamEvent is one event on a completion stream.
type StreamEvent struct {
	Type     StreamEventType
	Chunk    string
	Provider models.ProviderType
	Err      error
}

// CompleteStream streams generated text with the same fallback order as
// Complete. A failure mid-stream does not resume: the router sends a
// Restart event and replays the whole prompt against the next candidate,
// so the consumer must discard partial text on Restart.
func (r *Router) CompleteStream(ctx context.Context, req Request) (<-chan StreamEvent, error) {
	cands, total, err := r.candidates(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, ErrNoCredentials
	}

	events := make(chan StreamEvent)
	go func() {
		defer close(events)

		for _, c := range cands {
			streamed := false
			err := c.prov.CompleteStream(ctx, c.cred.APIKey, req, func(chunk string) error {
				streamed = true
				select {
				case events <- StreamEvent{Type: EventChunk, Chunk: chunk, Provider: c.prov.Type()}:
					return nil
				case <-ctx.Done():
					return ctx.Err()
				}
			})
			if err == nil {
				if r.registry != nil {
					r.registry.RecordSuccess(c.prov.Type(), r.now())
				}
				events <- StreamEvent{Type: EventDone, Provider: c.prov.Type()}
				return
			}
			if ctx.Err() != nil {
				events <- StreamEvent{Type: EventFailed, Err: ctx.Err()}
				return
			}

			r.markFailed(ctx, c, err)
			if streamed {
				events <- StreamEvent{Type: EventRestart, Provider: c.prov.Type(), Err: err}
			}
		}
		events <- StreamEvent{Type: EventFailed, Err: ErrProvidersExhausted}
	}()
	return events, nil
}
