package ai

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/lingobot/pkg/models"
)

// fakeProvider scripts responses per call so tests can drive failures
// without touching the network.
type fakeProvider struct {
	providerType models.ProviderType

	mu       sync.Mutex
	calls    int
	keysSeen []string

	// one entry per call in order; reused last entry once exhausted
	results []fakeResult
}

type fakeResult struct {
	text string
	err  error
	// chunks streamed before err fires (CompleteStream only)
	chunks []string
}

func (f *fakeProvider) Type() models.ProviderType { return f.providerType }

func (f *fakeProvider) next(apiKey string) fakeResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keysSeen = append(f.keysSeen, apiKey)
	i := f.calls
	f.calls++
	if i >= len(f.results) {
		i = len(f.results) - 1
	}
	return f.results[i]
}

func (f *fakeProvider) Complete(ctx context.Context, apiKey string, req Request) (string, error) {
	res := f.next(apiKey)
	return res.text, res.err
}

func (f *fakeProvider) CompleteStream(ctx context.Context, apiKey string, req Request, onChunk func(string) error) error {
	res := f.next(apiKey)
	for _, c := range res.chunks {
		if err := onChunk(c); err != nil {
			return err
		}
	}
	return res.err
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// memCredentials is an in-memory CredentialSource.
type memCredentials struct {
	mu    sync.Mutex
	creds []models.Credential

	markCalls map[string]int
}

func newMemCredentials(creds ...models.Credential) *memCredentials {
	return &memCredentials{creds: creds, markCalls: map[string]int{}}
}

func (m *memCredentials) ListByProvider(ctx context.Context, userID int64, provider models.ProviderType) ([]models.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Credential
	for _, c := range m.creds {
		if c.UserID == userID && c.Provider == provider {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memCredentials) MarkFailed(ctx context.Context, id string, failedAt, disabledUntil time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markCalls[id]++
	for i := range m.creds {
		if m.creds[i].ID == id {
			fa, du := failedAt, disabledUntil
			m.creds[i].LastFailureAt = &fa
			m.creds[i].DisabledUntil = &du
		}
	}
	return nil
}

func (m *memCredentials) get(id string) models.Credential {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.creds {
		if c.ID == id {
			return c
		}
	}
	return models.Credential{}
}

func cred(id string, userID int64, provider models.ProviderType, key string) models.Credential {
	return models.Credential{
		ID:       id,
		UserID:   userID,
		Provider: provider,
		APIKey:   key,
		Enabled:  true,
	}
}

func testClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestRouterSelectionDeterministic(t *testing.T) {
	openaiFake := &fakeProvider{providerType: models.ProviderOpenAI, results: []fakeResult{{text: "hello"}}}
	geminiFake := &fakeProvider{providerType: models.ProviderGemini, results: []fakeResult{{text: "never"}}}
	store := newMemCredentials(
		cred("c1", 7, models.ProviderOpenAI, "key-first"),
		cred("c2", 7, models.ProviderOpenAI, "key-second"),
		cred("c3", 7, models.ProviderGemini, "key-gemini"),
	)
	router := NewRouter(store, NewStatusRegistry(),
		WithProvider(openaiFake), WithProvider(geminiFake))

	for i := 0; i < 3; i++ {
		out, err := router.Complete(context.Background(), Request{UserID: 7, Prompt: "hi"})
		require.NoError(t, err)
		assert.Equal(t, "hello", out.Text)
		assert.Equal(t, models.ProviderOpenAI, out.Provider)
	}

	// always the first configured key, never the second, never gemini
	assert.Equal(t, []string{"key-first", "key-first", "key-first"}, openaiFake.keysSeen)
	assert.Equal(t, 0, geminiFake.callCount())
}

func TestRouterFallsBackAcrossProviders(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	openaiFake := &fakeProvider{providerType: models.ProviderOpenAI, results: []fakeResult{{err: errors.New("boom")}}}
	geminiFake := &fakeProvider{providerType: models.ProviderGemini, results: []fakeResult{{text: "from gemini"}}}
	store := newMemCredentials(
		cred("c1", 7, models.ProviderOpenAI, "key-openai"),
		cred("c2", 7, models.ProviderGemini, "key-gemini"),
	)
	router := NewRouter(store, NewStatusRegistry(),
		WithProvider(openaiFake), WithProvider(geminiFake), WithClock(testClock(now)))

	out, err := router.Complete(context.Background(), Request{UserID: 7, Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "from gemini", out.Text)
	assert.Equal(t, models.ProviderGemini, out.Provider)

	// failed credential went into cooldown
	c := store.get("c1")
	require.NotNil(t, c.DisabledUntil)
	assert.Equal(t, now.Add(DefaultCooldown), *c.DisabledUntil)
	assert.False(t, c.Usable(now.Add(time.Minute)))
	assert.True(t, c.Usable(now.Add(DefaultCooldown+time.Second)))
}

func TestRouterSkipsCoolingCredentialWithoutCalling(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	until := now.Add(3 * time.Minute)
	cooling := cred("c1", 7, models.ProviderOpenAI, "key-openai")
	cooling.DisabledUntil = &until

	openaiFake := &fakeProvider{providerType: models.ProviderOpenAI, results: []fakeResult{{text: "never"}}}
	geminiFake := &fakeProvider{providerType: models.ProviderGemini, results: []fakeResult{{text: "from gemini"}}}
	store := newMemCredentials(cooling, cred("c2", 7, models.ProviderGemini, "key-gemini"))
	router := NewRouter(store, NewStatusRegistry(),
		WithProvider(openaiFake), WithProvider(geminiFake), WithClock(testClock(now)))

	out, err := router.Complete(context.Background(), Request{UserID: 7, Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, models.ProviderGemini, out.Provider)
	// the cooling credential must not generate a network call
	assert.Equal(t, 0, openaiFake.callCount())
}

func TestRouterNoCredentials(t *testing.T) {
	openaiFake := &fakeProvider{providerType: models.ProviderOpenAI, results: []fakeResult{{text: "never"}}}
	geminiFake := &fakeProvider{providerType: models.ProviderGemini, results: []fakeResult{{text: "never"}}}
	router := NewRouter(newMemCredentials(), NewStatusRegistry(),
		WithProvider(openaiFake), WithProvider(geminiFake))

	_, err := router.Complete(context.Background(), Request{UserID: 7, Prompt: "hi"})
	assert.ErrorIs(t, err, ErrNoCredentials)
	assert.Equal(t, 0, openaiFake.callCount())
	assert.Equal(t, 0, geminiFake.callCount())
}

func TestRouterAllExhausted(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	until := now.Add(2 * time.Minute)

	c1 := cred("c1", 7, models.ProviderOpenAI, "k1")
	c1.DisabledUntil = &until
	c2 := cred("c2", 7, models.ProviderGemini, "k2")
	c2.Enabled = false

	openaiFake := &fakeProvider{providerType: models.ProviderOpenAI, results: []fakeResult{{text: "never"}}}
	geminiFake := &fakeProvider{providerType: models.ProviderGemini, results: []fakeResult{{text: "never"}}}
	router := NewRouter(newMemCredentials(c1, c2), NewStatusRegistry(),
		WithProvider(openaiFake), WithProvider(geminiFake), WithClock(testClock(now)))

	_, err := router.Complete(context.Background(), Request{UserID: 7, Prompt: "hi"})
	assert.ErrorIs(t, err, ErrProvidersExhausted)
	// no network calls when every credential is out
	assert.Equal(t, 0, openaiFake.callCount())
	assert.Equal(t, 0, geminiFake.callCount())
}

func TestRouterTriesSecondKeyOfSameProvider(t *testing.T) {
	openaiFake := &fakeProvider{providerType: models.ProviderOpenAI, results: []fakeResult{
		{err: errors.New("boom")},
		{text: "second key works"},
	}}
	geminiFake := &fakeProvider{providerType: models.ProviderGemini, results: []fakeResult{{text: "never"}}}
	store := newMemCredentials(
		cred("c1", 7, models.ProviderOpenAI, "k1"),
		cred("c2", 7, models.ProviderOpenAI, "k2"),
	)
	router := NewRouter(store, NewStatusRegistry(),
		WithProvider(openaiFake), WithProvider(geminiFake))

	out, err := router.Complete(context.Background(), Request{UserID: 7, Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "second key works", out.Text)
	assert.Equal(t, []string{"k1", "k2"}, openaiFake.keysSeen)
	assert.Equal(t, 1, store.markCalls["c1"])
	assert.Zero(t, store.markCalls["c2"])
}

func TestRouterStreamRestartOnMidStreamFailure(t *testing.T) {
	openaiFake := &fakeProvider{providerType: models.ProviderOpenAI, results: []fakeResult{
		{chunks: []string{"Once upon", " a time"}, err: errors.New("connection reset")},
	}}
	geminiFake := &fakeProvider{providerType: models.ProviderGemini, results: []fakeResult{
		{chunks: []string{"A fresh", " story."}},
	}}
	store := newMemCredentials(
		cred("c1", 7, models.ProviderOpenAI, "k1"),
		cred("c2", 7, models.ProviderGemini, "k2"),
	)
	router := NewRouter(store, NewStatusRegistry(),
		WithProvider(openaiFake), WithProvider(geminiFake))

	events, err := router.CompleteStream(context.Background(), Request{UserID: 7, Prompt: "story"})
	require.NoError(t, err)

	var types []StreamEventType
	var final string
	for ev := range events {
		types = append(types, ev.Type)
		switch ev.Type {
		case EventChunk:
			final += ev.Chunk
		case EventRestart:
			// partial output is void after a restart
			final = ""
		}
	}

	assert.Equal(t, []StreamEventType{
		EventChunk, EventChunk, EventRestart, EventChunk, EventChunk, EventDone,
	}, types)
	assert.Equal(t, "A fresh story.", final)
	assert.Equal(t, 1, store.markCalls["c1"])
}

func TestRouterStreamAllFail(t *testing.T) {
	openaiFake := &fakeProvider{providerType: models.ProviderOpenAI, results: []fakeResult{{err: errors.New("down")}}}
	geminiFake := &fakeProvider{providerType: models.ProviderGemini, results: []fakeResult{{err: errors.New("also down")}}}
	store := newMemCredentials(
		cred("c1", 7, models.ProviderOpenAI, "k1"),
		cred("c2", 7, models.ProviderGemini, "k2"),
	)
	router := NewRouter(store, NewStatusRegistry(),
		WithProvider(openaiFake), WithProvider(geminiFake))

	events, err := router.CompleteStream(context.Background(), Request{UserID: 7, Prompt: "story"})
	require.NoError(t, err)

	var last StreamEvent
	for ev := range events {
		last = ev
	}
	assert.Equal(t, EventFailed, last.Type)
	assert.ErrorIs(t, last.Err, ErrProvidersExhausted)
	assert.Equal(t, 1, store.markCalls["c1"])
	assert.Equal(t, 1, store.markCalls["c2"])
}

func TestRouterStreamNoCredentials(t *testing.T) {
	router := NewRouter(newMemCredentials(), NewStatusRegistry())
	_, err := router.CompleteStream(context.Background(), Request{UserID: 7, Prompt: "story"})
	assert.ErrorIs(t, err, ErrNoCredentials)
}
