package practice

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/example/lingobot/internal/database"
	"github.com/example/lingobot/pkg/models"
)

// Question is a single multiple-choice quiz question: pick the translation
// of the shown word.
type Question struct {
	Word         models.Word
	Options      []string
	CorrectIndex int
}

// Check reports whether the chosen option index is the right one.
func (q Question) Check(chosen int) bool {
	return chosen == q.CorrectIndex
}

// Quiz builds vocabulary tests from stored words and records session
// results.
type Quiz struct {
	words   *database.WordRepository
	results *database.PracticeResultRepository
	rnd     *rand.Rand
}

// NewQuiz creates the quiz builder.
func NewQuiz(words *database.WordRepository, results *database.PracticeResultRepository) *Quiz {
	return &Quiz{
		words:   words,
		results: results,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Build creates up to count questions over the given words, drawing wrong
// options from the rest of the stored vocabulary.
func (q *Quiz) Build(ctx context.Context, words []models.Word, count int) ([]Question, error) {
	if len(words) == 0 {
		return nil, fmt.Errorf("no words available for a quiz")
	}

	words = append([]models.Word(nil), words...)
	q.rnd.Shuffle(len(words), func(i, j int) {
		words[i], words[j] = words[j], words[i]
	})
	if len(words) > count {
		words = words[:count]
	}

	// distractor pool: random words beyond the quiz set
	pool, err := q.words.GetRandom(ctx, count+10)
	if err != nil {
		return nil, err
	}

	questions := make([]Question, 0, len(words))
	for _, w := range words {
		questions = append(questions, buildQuestion(w, distractors(w, words, pool, 3), q.rnd))
	}
	return questions, nil
}

// RecordResult stores the outcome of a finished quiz session.
func (q *Quiz) RecordResult(ctx context.Context, userID int64, total, correct int, duration time.Duration) error {
	return q.results.Create(ctx, &models.PracticeResult{
		UserID:       userID,
		PracticeType: "quiz",
		TotalWords:   total,
		CorrectWords: correct,
		Duration:     int(duration.Seconds()),
	})
}

// buildQuestion shuffles the wrong options together with the correct
// translation and tracks where the correct one lands.
func buildQuestion(w models.Word, wrong []string, rnd *rand.Rand) Question {
	options := append(append([]string(nil), wrong...), w.Translation)
	correct := len(options) - 1

	rnd.Shuffle(len(options), func(i, j int) {
		switch correct {
		case i:
			correct = j
		case j:
			correct = i
		}
		options[i], options[j] = options[j], options[i]
	})

	return Question{Word: w, Options: options, CorrectIndex: correct}
}

// distractors picks up to n translations different from the target word's,
// preferring words outside the quiz set.
func distractors(target models.Word, quizWords, pool []models.Word, n int) []string {
	inQuiz := make(map[int64]bool, len(quizWords))
	for _, w := range quizWords {
		inQuiz[w.ID] = true
	}

	var out []string
	seen := map[string]bool{normalize(target.Translation): true}
	add := func(candidates []models.Word, skipQuiz bool) {
		for _, c := range candidates {
			if len(out) >= n {
				return
			}
			if c.ID == target.ID || (skipQuiz && inQuiz[c.ID]) {
				continue
			}
			key := normalize(c.Translation)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, c.Translation)
		}
	}
	add(pool, true)
	add(pool, false)
	add(quizWords, false)
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
