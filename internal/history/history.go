// Package history keeps the ordered attempt log of one practice session and
// derives the windowed signals the adaptive rule consumes.
package history

import (
	"github.com/vytor/mathflash/internal/difficulty"
)

// DefaultWindow is the number of most recent attempts considered by
// RecentAccuracy.
const DefaultWindow = 5

// Record is one completed attempt. PuzzleID refers to the puzzle owned by
// the generator and is not interpreted here.
type Record struct {
	PuzzleID       int64
	Correct        bool
	ElapsedSeconds float64
	Difficulty     difficulty.Level
}

// History is an append-only attempt log. It is owned by a single session and
// is not safe for concurrent use.
type History struct {
	records []Record
}

// New returns a history seeded with records in the order given.
func New(records ...Record) *History {
	h := &History{records: make([]Record, 0, len(records))}
	for _, r := range records {
		h.Record(r)
	}
	return h
}

// Record appends r to the end of the log.
func (h *History) Record(r Record) {
	h.records = append(h.records, r)
}

// Len returns the number of recorded attempts.
func (h *History) Len() int {
	return len(h.records)
}

// Attempts returns a copy of the log in insertion order.
func (h *History) Attempts() []Record {
	out := make([]Record, len(h.records))
	copy(out, h.records)
	return out
}

// RecentAccuracy returns the fraction of correct attempts among the last
// window records, or among all records when fewer exist. An empty history
// yields 0. A non-positive window uses DefaultWindow.
func (h *History) RecentAccuracy(window int) float64 {
	if window <= 0 {
		window = DefaultWindow
	}
	n := len(h.records)
	if n == 0 {
		return 0
	}
	if window > n {
		window = n
	}

	correct := 0
	for _, r := range h.records[n-window:] {
		if r.Correct {
			correct++
		}
	}
	return float64(correct) / float64(window)
}
