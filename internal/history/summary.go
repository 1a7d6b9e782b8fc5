package history

import "github.com/vytor/mathflash/internal/difficulty"

// Summary aggregates a whole session log.
type Summary struct {
	TotalAttempts int                `json:"total_attempts"`
	Correct       int                `json:"correct"`
	Incorrect     int                `json:"incorrect"`
	AccuracyPct   float64            `json:"accuracy_pct"`
	AvgSeconds    float64            `json:"avg_seconds"`
	MinSeconds    float64            `json:"min_seconds"`
	MaxSeconds    float64            `json:"max_seconds"`
	Progression   []difficulty.Level `json:"difficulty_progression"`
}

// Summary computes the aggregates of the log. An empty history returns the
// zero Summary with an empty progression.
func (h *History) Summary() Summary {
	s := Summary{Progression: make([]difficulty.Level, 0, len(h.records))}
	if len(h.records) == 0 {
		return s
	}

	var total float64
	s.MinSeconds = h.records[0].ElapsedSeconds
	s.MaxSeconds = h.records[0].ElapsedSeconds
	for _, r := range h.records {
		if r.Correct {
			s.Correct++
		}
		total += r.ElapsedSeconds
		s.MinSeconds = min(s.MinSeconds, r.ElapsedSeconds)
		s.MaxSeconds = max(s.MaxSeconds, r.ElapsedSeconds)
		s.Progression = append(s.Progression, r.Difficulty)
	}

	s.TotalAttempts = len(h.records)
	s.Incorrect = s.TotalAttempts - s.Correct
	s.AccuracyPct = float64(s.Correct) / float64(s.TotalAttempts) * 100
	s.AvgSeconds = total / float64(s.TotalAttempts)
	return s
}
