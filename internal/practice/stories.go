package practice

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/example/lingobot/internal/ai"
	"github.com/example/lingobot/pkg/models"
)

// completer is the slice of the AI router the practice features need.
type completer interface {
	Complete(ctx context.Context, req ai.Request) (*ai.Completion, error)
}

// Story is a generated reading exercise built around the user's vocabulary.
type Story struct {
	Title     string   `json:"title"`
	Text      string   `json:"text"`
	WordsUsed []string `json:"words_used"`
}

// Stories generates short reading texts that weave in words the user is
// currently learning.
type Stories struct {
	ai completer
}

// NewStories creates the story generator.
func NewStories(router completer) *Stories {
	return &Stories{ai: router}
}

const storySystemPrompt = "You are an English tutor writing short practice texts for language learners. Always answer with a single JSON object."

// Generate asks for a short story using the given words. Parse failures are
// returned as errors rather than raw model text.
func (s *Stories) Generate(ctx context.Context, userID int64, words []models.Word) (*Story, error) {
	if len(words) == 0 {
		return nil, fmt.Errorf("no words to build a story from")
	}

	list := make([]string, 0, len(words))
	for _, w := range words {
		list = append(list, fmt.Sprintf("%s (%s)", w.Word, w.Translation))
	}

	prompt := fmt.Sprintf(
		`Write a short story (4-6 sentences, A2-B1 level English) that naturally uses these words: %s.
Respond with JSON: {"title": "...", "text": "...", "words_used": ["..."]}`,
		strings.Join(list, ", "))

	out, err := s.ai.Complete(ctx, ai.Request{
		UserID:      userID,
		System:      storySystemPrompt,
		Prompt:      prompt,
		Temperature: 0.8,
		JSONMode:    true,
	})
	if err != nil {
		return nil, err
	}

	var story Story
	if err := json.Unmarshal([]byte(ExtractJSON(out.Text)), &story); err != nil {
		return nil, fmt.Errorf("failed to parse story response: %w", err)
	}
	if story.Text == "" {
		return nil, fmt.Errorf("story response missing text")
	}
	return &story, nil
}
