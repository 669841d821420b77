package practice

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/lingobot/internal/ai"
	"github.com/example/lingobot/pkg/models"
)

type fakeCompleter struct {
	text string
	err  error
	last ai.Request
}

func (f *fakeCompleter) Complete(ctx context.Context, req ai.Request) (*ai.Completion, error) {
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return &ai.Completion{Text: f.text, Provider: models.ProviderOpenAI}, nil
}

func TestStoriesGenerate(t *testing.T) {
	fc := &fakeCompleter{text: "```json\n{\"title\": \"The Trip\", \"text\": \"We went on a trip.\", \"words_used\": [\"trip\"]}\n```"}
	stories := NewStories(fc)

	story, err := stories.Generate(context.Background(), 7, []models.Word{
		{Word: "trip", Translation: "поездка"},
	})
	require.NoError(t, err)
	assert.Equal(t, "The Trip", story.Title)
	assert.Equal(t, "We went on a trip.", story.Text)
	assert.True(t, fc.last.JSONMode)
	assert.Contains(t, fc.last.Prompt, "trip (поездка)")
}

func TestStoriesGenerateErrors(t *testing.T) {
	stories := NewStories(&fakeCompleter{text: "not json"})
	_, err := stories.Generate(context.Background(), 7, []models.Word{{Word: "cat"}})
	assert.Error(t, err)

	stories = NewStories(&fakeCompleter{err: ai.ErrNoCredentials})
	_, err = stories.Generate(context.Background(), 7, []models.Word{{Word: "cat"}})
	assert.ErrorIs(t, err, ai.ErrNoCredentials)

	_, err = stories.Generate(context.Background(), 7, nil)
	assert.Error(t, err)
}

func TestTranslatorExerciseAndCheck(t *testing.T) {
	fc := &fakeCompleter{text: `{"sentence": "Мы поехали в отпуск.", "word": "vacation", "hint": "holiday trip"}`}
	tr := NewTranslator(fc)

	ex, err := tr.Exercise(context.Background(), 7, models.Word{Word: "vacation", Translation: "отпуск"})
	require.NoError(t, err)
	assert.Equal(t, "vacation", ex.Word)
	assert.NotEmpty(t, ex.Sentence)

	fc.text = `{"correct": true, "feedback": "Well done."}`
	check, err := tr.Check(context.Background(), 7, *ex, "We went on vacation.")
	require.NoError(t, err)
	assert.True(t, check.Correct)
	assert.Contains(t, fc.last.Prompt, "We went on vacation.")
}

func TestBuildQuestion(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	w := models.Word{ID: 1, Word: "cat", Translation: "кошка"}

	q := buildQuestion(w, []string{"собака", "птица", "рыба"}, rnd)
	require.Len(t, q.Options, 4)
	assert.Equal(t, "кошка", q.Options[q.CorrectIndex])
	assert.True(t, q.Check(q.CorrectIndex))
	assert.False(t, q.Check((q.CorrectIndex+1)%4))
}

func TestDistractors(t *testing.T) {
	target := models.Word{ID: 1, Translation: "кошка"}
	quizWords := []models.Word{target, {ID: 2, Translation: "собака"}}
	pool := []models.Word{
		{ID: 2, Translation: "собака"},
		{ID: 3, Translation: "птица"},
		{ID: 4, Translation: "рыба"},
		{ID: 5, Translation: "кошка"}, // duplicate of the correct answer
		{ID: 6, Translation: "дом"},
	}

	out := distractors(target, quizWords, pool, 3)
	require.Len(t, out, 3)
	for _, o := range out {
		assert.NotEqual(t, "кошка", o)
	}
	// words outside the quiz set come first
	assert.Equal(t, []string{"птица", "рыба", "дом"}, out)
}
