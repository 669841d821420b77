package dictionary

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.dictionaryapi.dev/api/v2/entries/en"

// ErrNotFound means the dictionary has no entry for the word.
var ErrNotFound = fmt.Errorf("dictionary: word not found")

// Definition is one sense of a word.
type Definition struct {
	PartOfSpeech string
	Meaning      string
	Example      string
}

// Entry is a dictionary lookup result.
type Entry struct {
	Word        string
	Phonetic    string
	AudioURL    string
	Definitions []Definition
}

// Client looks up words in the Free Dictionary API. Successful lookups are
// cached in memory with a bounded FIFO cache.
type Client struct {
	baseURL string
	http    *http.Client
	cache   *entryCache
}

// NewClient creates a dictionary client with the given cache capacity.
func NewClient(cacheSize int) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 5 * time.Second,
		},
		cache: newEntryCache(cacheSize),
	}
}

// apiEntry mirrors the Free Dictionary API response shape.
type apiEntry struct {
	Word      string `json:"word"`
	Phonetic  string `json:"phonetic"`
	Phonetics []struct {
		Text  string `json:"text"`
		Audio string `json:"audio"`
	} `json:"phonetics"`
	Meanings []struct {
		PartOfSpeech string `json:"partOfSpeech"`
		Definitions  []struct {
			Definition string `json:"definition"`
			Example    string `json:"example"`
		} `json:"definitions"`
	} `json:"meanings"`
}

// Lookup fetches definitions for a word, serving repeated lookups from the
// cache.
func (c *Client) Lookup(ctx context.Context, word string) (*Entry, error) {
	key := strings.ToLower(strings.TrimSpace(word))
	if key == "" {
		return nil, fmt.Errorf("dictionary: empty word")
	}
	if entry, ok := c.cache.get(key); ok {
		return entry, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/"+url.PathEscape(key), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dictionary request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("dictionary returned status %d: %s", resp.StatusCode, string(body))
	}

	var raw []apiEntry
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode dictionary response: %w", err)
	}
	if len(raw) == 0 {
		return nil, ErrNotFound
	}

	entry := convertEntry(raw[0])
	c.cache.put(key, entry)
	return entry, nil
}

func convertEntry(raw apiEntry) *Entry {
	entry := &Entry{
		Word:     raw.Word,
		Phonetic: raw.Phonetic,
	}
	for _, p := range raw.Phonetics {
		if entry.Phonetic == "" && p.Text != "" {
			entry.Phonetic = p.Text
		}
		if entry.AudioURL == "" && p.Audio != "" {
			entry.AudioURL = p.Audio
		}
	}
	for _, m := range raw.Meanings {
		for _, d := range m.Definitions {
			entry.Definitions = append(entry.Definitions, Definition{
				PartOfSpeech: m.PartOfSpeech,
				Meaning:      d.Definition,
				Example:      d.Example,
			})
		}
	}
	return entry
}
