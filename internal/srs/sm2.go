package srs

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/example/lingobot/pkg/models"
)

// Quality is a recall grade on the canonical 0-5 SM-2 scale.
type Quality int

const (
	// Complete blackout, unable to recall
	QualityBlackout Quality = 0
	// Incorrect response but remembered upon seeing the correct answer
	QualityIncorrect Quality = 1
	// Incorrect response but the correct answer felt familiar
	QualityIncorrectFamiliar Quality = 2
	// Correct response but required significant effort
	QualityCorrectDifficult Quality = 3
	// Correct response after some hesitation
	QualityCorrectHesitation Quality = 4
	// Perfect response with no hesitation
	QualityPerfect Quality = 5
)

// Valid reports whether the grade is on the 0-5 scale.
func (q Quality) Valid() bool {
	return q >= QualityBlackout && q <= QualityPerfect
}

// Button is one of the four review buttons shown in the bot UI.
type Button int

const (
	ButtonAgain Button = iota + 1
	ButtonHard
	ButtonGood
	ButtonEasy
)

// QualityForButton converts a four-button review answer to the canonical
// 0-5 scale. This is the only conversion table in the codebase:
// Again=1 (failed recall), Hard=3, Good=4, Easy=5.
func QualityForButton(b Button) (Quality, error) {
	switch b {
	case ButtonAgain:
		return QualityIncorrect, nil
	case ButtonHard:
		return QualityCorrectDifficult, nil
	case ButtonGood:
		return QualityCorrectHesitation, nil
	case ButtonEasy:
		return QualityPerfect, nil
	default:
		return 0, fmt.Errorf("unknown review button: %d", b)
	}
}

const (
	// MinEaseFactor is the SM-2 floor for the easiness factor
	MinEaseFactor = 1.3
	// DefaultEaseFactor is the initial easiness factor for new words
	DefaultEaseFactor = 2.5
)

// Scheduler implements the SM-2 algorithm for spaced repetition
type Scheduler struct {
	// Grades at or above this value count as a successful recall
	PassThreshold Quality
	// Maximum review interval in days
	MaxIntervalDays int
	// Consecutive successes after which a word counts as known
	KnownRepetitions int
}

// New creates a scheduler with the default settings.
func New() *Scheduler {
	return &Scheduler{
		PassThreshold:    QualityCorrectDifficult,
		MaxIntervalDays:  365,
		KnownRepetitions: 3,
	}
}

// NewRecord returns a fresh review record for a word: zero interval,
// zero repetitions, immediately due.
func NewRecord(userID, wordID int64, now time.Time) models.ReviewRecord {
	return models.ReviewRecord{
		UserID:         userID,
		WordID:         wordID,
		IntervalDays:   0,
		EaseFactor:     DefaultEaseFactor,
		Repetitions:    0,
		Status:         models.StatusNew,
		NextReviewDate: now,
	}
}

// Grade applies one review result to a record and returns the updated copy.
// It is pure: the caller persists the result. Out-of-range grades are
// rejected rather than clamped.
func (s *Scheduler) Grade(rec models.ReviewRecord, q Quality, now time.Time) (models.ReviewRecord, error) {
	if !q.Valid() {
		return rec, fmt.Errorf("quality grade %d is outside the 0-5 scale", q)
	}

	ef := rec.EaseFactor + (0.1 - float64(5-q)*(0.08+float64(5-q)*0.02))
	if ef < MinEaseFactor {
		ef = MinEaseFactor
	}
	rec.EaseFactor = ef

	if q < s.PassThreshold {
		// Failed recall: reset the streak and see the word again tomorrow
		rec.Repetitions = 0
		rec.IntervalDays = 1
	} else {
		rec.Repetitions++
		switch rec.Repetitions {
		case 1:
			rec.IntervalDays = 1
		case 2:
			rec.IntervalDays = 6
		default:
			rec.IntervalDays = int(math.Round(float64(rec.IntervalDays) * ef))
		}
		if rec.IntervalDays > s.MaxIntervalDays {
			rec.IntervalDays = s.MaxIntervalDays
		}
	}

	rec.LastQuality = int(q)
	rec.LastReviewDate = now
	rec.NextReviewDate = now.AddDate(0, 0, rec.IntervalDays)
	rec.Status = s.statusFor(rec.Repetitions)

	return rec, nil
}

// statusFor derives the learning status from the success streak.
// A word counts as known after KnownRepetitions consecutive successes.
// A graded word is never "new" again: a failed review drops it back to
// learning, not to new.
func (s *Scheduler) statusFor(repetitions int) models.ReviewStatus {
	if repetitions >= s.KnownRepetitions {
		return models.StatusKnown
	}
	return models.StatusLearning
}

// SelectDue returns up to limit records due for review at the given time.
// New words come first, then the most overdue; ties break by word ID so
// the order is deterministic.
func (s *Scheduler) SelectDue(records []models.ReviewRecord, now time.Time, limit int) []models.ReviewRecord {
	var due []models.ReviewRecord
	for _, r := range records {
		if r.Due(now) {
			due = append(due, r)
		}
	}

	sort.Slice(due, func(i, j int) bool {
		iNew := due[i].Status == models.StatusNew
		jNew := due[j].Status == models.StatusNew
		if iNew != jNew {
			return iNew
		}
		if !due[i].NextReviewDate.Equal(due[j].NextReviewDate) {
			return due[i].NextReviewDate.Before(due[j].NextReviewDate)
		}
		return due[i].WordID < due[j].WordID
	})

	if limit >= 0 && len(due) > limit {
		due = due[:limit]
	}
	return due
}
