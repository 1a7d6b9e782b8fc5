package history_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/mathflash/internal/difficulty"
	"github.com/vytor/mathflash/internal/history"
)

func outcomes(correct ...bool) []history.Record {
	out := make([]history.Record, len(correct))
	for i, c := range correct {
		out[i] = history.Record{
			PuzzleID:       int64(i + 1),
			Correct:        c,
			ElapsedSeconds: float64(i + 1),
			Difficulty:     difficulty.Medium,
		}
	}
	return out
}

func TestRecentAccuracy_Empty(t *testing.T) {
	h := history.New()
	assert.Equal(t, 0.0, h.RecentAccuracy(history.DefaultWindow))
	assert.Equal(t, 0, h.Len())
}

func TestRecentAccuracy_WindowOfSeven(t *testing.T) {
	// The first two records fall outside the window and must not count.
	h := history.New(outcomes(false, false, true, true, false, true, true)...)
	assert.InDelta(t, 0.8, h.RecentAccuracy(5), 1e-12)

	h = history.New(outcomes(true, true, true, true, false, true, true)...)
	assert.InDelta(t, 0.8, h.RecentAccuracy(5), 1e-12)
}

func TestRecentAccuracy_FewerThanWindow(t *testing.T) {
	h := history.New(outcomes(true, false, true)...)
	assert.InDelta(t, 2.0/3.0, h.RecentAccuracy(5), 1e-12)

	h = history.New(outcomes(true)...)
	assert.Equal(t, 1.0, h.RecentAccuracy(5))
}

func TestRecentAccuracy_NonPositiveWindowUsesDefault(t *testing.T) {
	h := history.New(outcomes(false, true, true, true, true, true)...)
	assert.Equal(t, h.RecentAccuracy(history.DefaultWindow), h.RecentAccuracy(0))
	assert.Equal(t, h.RecentAccuracy(history.DefaultWindow), h.RecentAccuracy(-3))
}

func TestRecentAccuracy_Idempotent(t *testing.T) {
	h := history.New(outcomes(true, false, true, true)...)
	before := h.Attempts()

	first := h.RecentAccuracy(5)
	second := h.RecentAccuracy(5)

	assert.Equal(t, first, second)
	assert.Equal(t, before, h.Attempts(), "querying must not mutate the log")
}

func TestRecord_AppendsInOrder(t *testing.T) {
	h := history.New()
	for _, r := range outcomes(true, false, true) {
		h.Record(r)
	}

	got := h.Attempts()
	require.Len(t, got, 3)
	assert.Equal(t, int64(1), got[0].PuzzleID)
	assert.Equal(t, int64(3), got[2].PuzzleID)

	// The returned slice is a copy.
	got[0].Correct = false
	assert.True(t, h.Attempts()[0].Correct)
}

func TestSummary(t *testing.T) {
	h := history.New(
		history.Record{PuzzleID: 1, Correct: true, ElapsedSeconds: 4, Difficulty: difficulty.Medium},
		history.Record{PuzzleID: 2, Correct: true, ElapsedSeconds: 2, Difficulty: difficulty.Hard},
		history.Record{PuzzleID: 3, Correct: false, ElapsedSeconds: 12, Difficulty: difficulty.Hard},
		history.Record{PuzzleID: 4, Correct: true, ElapsedSeconds: 6, Difficulty: difficulty.Medium},
	)

	s := h.Summary()
	assert.Equal(t, 4, s.TotalAttempts)
	assert.Equal(t, 3, s.Correct)
	assert.Equal(t, 1, s.Incorrect)
	assert.InDelta(t, 75.0, s.AccuracyPct, 1e-9)
	assert.InDelta(t, 6.0, s.AvgSeconds, 1e-9)
	assert.Equal(t, 2.0, s.MinSeconds)
	assert.Equal(t, 12.0, s.MaxSeconds)
	assert.Equal(t, []difficulty.Level{difficulty.Medium, difficulty.Hard, difficulty.Hard, difficulty.Medium}, s.Progression)
}

func TestSummary_Empty(t *testing.T) {
	s := history.New().Summary()
	assert.Zero(t, s.TotalAttempts)
	assert.Zero(t, s.AccuracyPct)
	assert.NotNil(t, s.Progression)
	assert.Empty(t, s.Progression)
}
