package srs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/lingobot/pkg/models"
)

var reviewTime = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func TestGradeEaseFactorFloor(t *testing.T) {
	s := New()
	for _, ef := range []float64{1.3, 1.5, 2.5, 3.0} {
		for q := QualityBlackout; q <= QualityPerfect; q++ {
			rec := NewRecord(1, 1, reviewTime)
			rec.EaseFactor = ef
			got, err := s.Grade(rec, q, reviewTime)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, got.EaseFactor, MinEaseFactor,
				"ease factor dropped below floor for ef=%v q=%d", ef, q)
		}
	}
}

func TestGradeFailureResetsRepetitions(t *testing.T) {
	s := New()
	for q := QualityBlackout; q < QualityCorrectDifficult; q++ {
		rec := NewRecord(1, 1, reviewTime)
		rec.Repetitions = 4
		rec.IntervalDays = 30
		got, err := s.Grade(rec, q, reviewTime)
		require.NoError(t, err)
		assert.Equal(t, 0, got.Repetitions, "grade %d should reset the streak", q)
		assert.Equal(t, 1, got.IntervalDays, "grade %d should schedule for tomorrow", q)
		assert.Equal(t, models.StatusLearning, got.Status)
	}
}

func TestGradeSuccessStreakIntervals(t *testing.T) {
	s := New()
	rec := NewRecord(1, 1, reviewTime)
	now := reviewTime

	var intervals []int
	for i := 0; i < 3; i++ {
		var err error
		rec, err = s.Grade(rec, QualityCorrectHesitation, now)
		require.NoError(t, err)
		intervals = append(intervals, rec.IntervalDays)
		now = rec.NextReviewDate
	}

	// Third interval is round(6 * EF after three grade-4 reviews).
	// Grade 4 leaves EF unchanged, so EF stays at 2.5 and 6*2.5 = 15.
	assert.Equal(t, []int{1, 6, 15}, intervals)
	assert.Equal(t, models.StatusKnown, rec.Status)
}

func TestGradeConcreteScenario(t *testing.T) {
	s := New()
	rec := models.ReviewRecord{
		UserID:       1,
		WordID:       42,
		IntervalDays: 6,
		EaseFactor:   2.5,
		Repetitions:  2,
		Status:       models.StatusLearning,
	}

	got, err := s.Grade(rec, QualityCorrectHesitation, reviewTime)
	require.NoError(t, err)

	assert.Equal(t, 3, got.Repetitions)
	// EF' = 2.5 + (0.1 - 1*(0.08 + 1*0.02)) = 2.5
	assert.InDelta(t, 2.5, got.EaseFactor, 1e-9)
	assert.Equal(t, 15, got.IntervalDays)
	assert.Equal(t, models.StatusKnown, got.Status)
	assert.Equal(t, reviewTime.AddDate(0, 0, 15), got.NextReviewDate)
	assert.Equal(t, reviewTime, got.LastReviewDate)
}

func TestGradeRejectsOutOfRangeQuality(t *testing.T) {
	s := New()
	rec := NewRecord(1, 1, reviewTime)
	for _, q := range []Quality{-1, 6, 100} {
		_, err := s.Grade(rec, q, reviewTime)
		assert.Error(t, err, "grade %d should be rejected", q)
	}
}

func TestGradeMaxIntervalCap(t *testing.T) {
	s := New()
	rec := NewRecord(1, 1, reviewTime)
	rec.Repetitions = 10
	rec.IntervalDays = 300
	rec.EaseFactor = 2.5

	got, err := s.Grade(rec, QualityPerfect, reviewTime)
	require.NoError(t, err)
	assert.Equal(t, s.MaxIntervalDays, got.IntervalDays)
}

func TestQualityForButton(t *testing.T) {
	tests := []struct {
		button Button
		want   Quality
	}{
		{ButtonAgain, QualityIncorrect},
		{ButtonHard, QualityCorrectDifficult},
		{ButtonGood, QualityCorrectHesitation},
		{ButtonEasy, QualityPerfect},
	}
	for _, tc := range tests {
		got, err := QualityForButton(tc.button)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}

	_, err := QualityForButton(Button(9))
	assert.Error(t, err)
}

func TestSelectDueOrdering(t *testing.T) {
	s := New()
	overdue := func(wordID int64, daysAgo int, status models.ReviewStatus) models.ReviewRecord {
		return models.ReviewRecord{
			UserID:         1,
			WordID:         wordID,
			Status:         status,
			NextReviewDate: reviewTime.AddDate(0, 0, -daysAgo),
		}
	}

	records := []models.ReviewRecord{
		overdue(10, 1, models.StatusLearning),
		overdue(20, 5, models.StatusLearning),
		overdue(30, 0, models.StatusNew),
		overdue(40, 2, models.StatusKnown),
		{UserID: 1, WordID: 50, Status: models.StatusLearning, NextReviewDate: reviewTime.AddDate(0, 0, 3)}, // not due
	}

	due := s.SelectDue(records, reviewTime, 10)
	var order []int64
	for _, r := range due {
		order = append(order, r.WordID)
	}

	// New first, then most overdue, future reviews excluded.
	assert.Equal(t, []int64{30, 20, 40, 10}, order)
}

func TestSelectDueTiesAndLimit(t *testing.T) {
	s := New()
	same := reviewTime.AddDate(0, 0, -1)
	records := []models.ReviewRecord{
		{WordID: 3, Status: models.StatusLearning, NextReviewDate: same},
		{WordID: 1, Status: models.StatusLearning, NextReviewDate: same},
		{WordID: 2, Status: models.StatusLearning, NextReviewDate: same},
	}

	due := s.SelectDue(records, reviewTime, 2)
	require.Len(t, due, 2)
	assert.Equal(t, int64(1), due[0].WordID)
	assert.Equal(t, int64(2), due[1].WordID)
}

func TestNewRecordIsImmediatelyDue(t *testing.T) {
	rec := NewRecord(1, 7, reviewTime)
	assert.True(t, rec.Due(reviewTime))
	assert.Equal(t, models.StatusNew, rec.Status)
	assert.Equal(t, DefaultEaseFactor, rec.EaseFactor)
	assert.Zero(t, rec.Repetitions)
	assert.Zero(t, rec.IntervalDays)
}
