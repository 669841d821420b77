package practice

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/lingobot/internal/ai"
	"github.com/example/lingobot/pkg/models"
)

// TranslationExercise is a sentence the user should translate into English.
type TranslationExercise struct {
	Sentence string `json:"sentence"`
	Word     string `json:"word"`
	Hint     string `json:"hint"`
}

// TranslationCheck grades a user's translation attempt.
type TranslationCheck struct {
	Correct  bool   `json:"correct"`
	Feedback string `json:"feedback"`
}

// Translator builds translation exercises around a vocabulary word and
// grades user answers.
type Translator struct {
	ai completer
}

// NewTranslator creates the translation exercise generator.
func NewTranslator(router completer) *Translator {
	return &Translator{ai: router}
}

const translatorSystemPrompt = "You are an English tutor grading translation exercises for a Russian-speaking learner. Always answer with a single JSON object."

// Exercise generates a sentence in the user's native language that should be
// translated into English using the given word.
func (t *Translator) Exercise(ctx context.Context, userID int64, word models.Word) (*TranslationExercise, error) {
	prompt := fmt.Sprintf(
		`Create a single Russian sentence whose English translation should use the word "%s" (meaning: %s).
Respond with JSON: {"sentence": "...", "word": "%s", "hint": "..."}`,
		word.Word, word.Translation, word.Word)

	out, err := t.ai.Complete(ctx, ai.Request{
		UserID:      userID,
		System:      translatorSystemPrompt,
		Prompt:      prompt,
		Temperature: 0.7,
		JSONMode:    true,
	})
	if err != nil {
		return nil, err
	}

	var ex TranslationExercise
	if err := json.Unmarshal([]byte(ExtractJSON(out.Text)), &ex); err != nil {
		return nil, fmt.Errorf("failed to parse exercise response: %w", err)
	}
	if ex.Sentence == "" {
		return nil, fmt.Errorf("exercise response missing sentence")
	}
	return &ex, nil
}

// Check grades the user's translation of an exercise sentence.
func (t *Translator) Check(ctx context.Context, userID int64, ex TranslationExercise, answer string) (*TranslationCheck, error) {
	prompt := fmt.Sprintf(
		`The learner was asked to translate this Russian sentence into English using the word "%s":
%s

Their answer: %s

Judge whether the answer is a correct translation that uses the word. Minor grammar slips are acceptable.
Respond with JSON: {"correct": true/false, "feedback": "one or two short sentences"}`,
		ex.Word, ex.Sentence, answer)

	out, err := t.ai.Complete(ctx, ai.Request{
		UserID:      userID,
		System:      translatorSystemPrompt,
		Prompt:      prompt,
		Temperature: 0.2,
		JSONMode:    true,
	})
	if err != nil {
		return nil, err
	}

	var check TranslationCheck
	if err := json.Unmarshal([]byte(ExtractJSON(out.Text)), &check); err != nil {
		return nil, fmt.Errorf("failed to parse check response: %w", err)
	}
	return &check, nil
}
