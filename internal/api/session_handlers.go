package api

import (
	"net/http"

	"github.com/vytor/mathflash/internal/difficulty"
	"github.com/vytor/mathflash/internal/errors"
	"github.com/vytor/mathflash/internal/models"
)

type startSessionRequest struct {
	PlayerName string `json:"player_name"`
	Difficulty string `json:"difficulty"`
	MaxPuzzles int    `json:"max_puzzles"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	var level difficulty.Level
	if req.Difficulty != "" {
		var err error
		if level, err = difficulty.ParseLevel(req.Difficulty); err != nil {
			handleError(w, r, errors.NewValidationError("difficulty", "must be Easy, Medium or Hard"))
			return
		}
	}

	session, err := s.Sessions.StartSession(r.Context(), req.PlayerName, level, req.MaxPuzzles)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, sessionResponse(*session))
}

type sessionView struct {
	models.Session
	Status    models.SessionStatus `json:"status"`
	Remaining int                  `json:"remaining"`
}

func sessionResponse(s models.Session) sessionView {
	return sessionView{Session: s, Status: s.Status(), Remaining: s.Remaining()}
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.SessionFilter{
		PlayerName: q.Get("player"),
		Status:     models.SessionStatus(q.Get("status")),
	}
	if raw := q.Get("difficulty"); raw != "" {
		level, err := difficulty.ParseLevel(raw)
		if err != nil {
			handleError(w, r, errors.NewValidationError("difficulty", "must be Easy, Medium or Hard"))
			return
		}
		filter.Difficulty = level
	}
	var err error
	if filter.Limit, err = queryInt(r, "limit"); err != nil {
		handleError(w, r, err)
		return
	}
	if filter.Offset, err = queryInt(r, "offset"); err != nil {
		handleError(w, r, err)
		return
	}

	sessions, total, err := s.Sessions.ListSessions(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}

	views := make([]sessionView, 0, len(sessions))
	for _, sess := range sessions {
		views = append(views, sessionResponse(sess))
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"sessions": views,
		"total":    total,
		"limit":    filter.Limit,
		"offset":   filter.Offset,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}
	session, err := s.Sessions.GetSession(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, sessionResponse(*session))
}

func (s *Server) handleNextPuzzle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}
	p, err := s.Sessions.NextPuzzle(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, p)
}

type submitAnswerRequest struct {
	PuzzleID       int64    `json:"puzzle_id"`
	Answer         *int     `json:"answer"`
	ElapsedSeconds *float64 `json:"elapsed_seconds"`
}

func (s *Server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req submitAnswerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	switch {
	case req.PuzzleID <= 0:
		handleError(w, r, errors.NewValidationError("puzzle_id", "required"))
		return
	case req.Answer == nil:
		handleError(w, r, errors.NewValidationError("answer", "required"))
		return
	case req.ElapsedSeconds == nil:
		handleError(w, r, errors.NewValidationError("elapsed_seconds", "required"))
		return
	}

	res, err := s.Sessions.SubmitAnswer(r.Context(), id, req.PuzzleID, *req.Answer, *req.ElapsedSeconds)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"attempt":  res.Attempt,
		"decision": res.Decision,
		"session":  sessionResponse(res.Session),
	})
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}
	session, err := s.Sessions.EndSession(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, sessionResponse(*session))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}
	summary, err := s.Sessions.Summary(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, summary)
}
