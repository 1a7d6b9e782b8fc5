package api

import (
	"net/http"

	"github.com/vytor/mathflash/internal/adaptive"
	"github.com/vytor/mathflash/internal/difficulty"
	"github.com/vytor/mathflash/internal/errors"
	"github.com/vytor/mathflash/internal/logger"
)

func (s *Server) handleLevels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{"levels": difficulty.Table()})
}

type decideRequest struct {
	Current        string   `json:"current"`
	Correct        bool     `json:"correct"`
	ElapsedSeconds float64  `json:"elapsed_seconds"`
	TimeLimit      *float64 `json:"time_limit_seconds"` // defaults to the level's limit
	RecentAccuracy float64  `json:"recent_accuracy"`
}

// handleDecide evaluates the difficulty rule once without touching any session.
func (s *Server) handleDecide(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req decideRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	level, err := difficulty.ParseLevel(req.Current)
	if err != nil {
		handleError(w, r, errors.NewPreconditionError("current", "must be Easy, Medium or Hard"))
		return
	}

	in := adaptive.Input{
		Current:        level,
		Correct:        req.Correct,
		ElapsedSeconds: req.ElapsedSeconds,
		RecentAccuracy: req.RecentAccuracy,
	}
	if req.TimeLimit != nil {
		in.TimeLimit = *req.TimeLimit
	} else {
		in.TimeLimit = difficulty.MustConfigFor(level).TimeLimitSeconds
	}

	res, err := adaptive.Evaluate(in)
	if err != nil {
		handleError(w, r, err)
		return
	}

	log.Debug("decision evaluated: %s score=%d -> %s", level, res.Score, res.Next)
	writeJSON(w, r, http.StatusOK, res)
}
