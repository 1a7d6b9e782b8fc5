package api

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/mathflash/internal/difficulty"
	"github.com/vytor/mathflash/internal/puzzle"
	"github.com/vytor/mathflash/internal/repository/sqlite"
	"github.com/vytor/mathflash/internal/services"
	"github.com/vytor/mathflash/internal/testutil"
)

func newTestServer(t *testing.T) http.Handler {
	db := testutil.NewTestDB(t)
	t.Cleanup(func() { testutil.MustClose(t, db) })

	svc := services.NewSessionService(
		sqlite.NewSessionRepository(db),
		sqlite.NewPuzzleRepository(db),
		sqlite.NewAttemptRepository(db),
		puzzle.NewSeededGenerator(7),
		services.SessionOptions{DefaultMaxPuzzles: 3, DefaultDifficulty: difficulty.Medium},
	)
	return (&Server{Sessions: svc, DB: db}).Routes()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := decode(t, rec)
	errObj, ok := body["error"].(map[string]any)
	require.True(t, ok, rec.Body.String())
	return errObj["code"].(string)
}

func TestHealthAndReady(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = do(t, h, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ready", rec.Body.String())
}

type failingPinger struct{}

func (failingPinger) PingContext(context.Context) error { return stderrors.New("closed") }

func TestReady_DatabaseDown(t *testing.T) {
	h := (&Server{DB: failingPinger{}}).Routes()
	rec := do(t, h, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestServer(t)
	do(t, h, http.MethodGet, "/api/levels", "")

	rec := do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "mathflash_requests_total")
}

func TestLevels(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/api/levels", "")
	require.Equal(t, http.StatusOK, rec.Code)

	levels := decode(t, rec)["levels"].([]any)
	require.Len(t, levels, 3)
	hard := levels[2].(map[string]any)
	assert.Equal(t, "Hard", hard["level"])
	assert.Equal(t, 15.0, hard["time_limit_seconds"])
}

func TestDecide(t *testing.T) {
	h := newTestServer(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantNext   string
		wantScore  float64
		wantCode   string
	}{
		{
			name:       "all bonuses move up",
			body:       `{"current":"Easy","correct":true,"elapsed_seconds":5,"recent_accuracy":0.8}`,
			wantStatus: http.StatusOK, wantNext: "Medium", wantScore: 100,
		},
		{
			name:       "explicit time limit",
			body:       `{"current":"Medium","correct":true,"elapsed_seconds":7,"time_limit_seconds":10,"recent_accuracy":0.5}`,
			wantStatus: http.StatusOK, wantNext: "Medium", wantScore: 40,
		},
		{
			name:       "slow wrong answer moves down",
			body:       `{"current":"Hard","correct":false,"elapsed_seconds":14,"recent_accuracy":0.2}`,
			wantStatus: http.StatusOK, wantNext: "Medium", wantScore: 0,
		},
		{
			name:       "negative elapsed",
			body:       `{"current":"Easy","correct":true,"elapsed_seconds":-1,"recent_accuracy":0.5}`,
			wantStatus: http.StatusUnprocessableEntity, wantCode: "PRECONDITION_FAILED",
		},
		{
			name:       "zero time limit",
			body:       `{"current":"Easy","correct":true,"elapsed_seconds":1,"time_limit_seconds":0,"recent_accuracy":0.5}`,
			wantStatus: http.StatusUnprocessableEntity, wantCode: "PRECONDITION_FAILED",
		},
		{
			name:       "accuracy above one",
			body:       `{"current":"Easy","correct":true,"elapsed_seconds":1,"recent_accuracy":1.5}`,
			wantStatus: http.StatusUnprocessableEntity, wantCode: "PRECONDITION_FAILED",
		},
		{
			name:       "unknown level",
			body:       `{"current":"Expert","correct":true,"elapsed_seconds":1,"recent_accuracy":0.5}`,
			wantStatus: http.StatusUnprocessableEntity, wantCode: "PRECONDITION_FAILED",
		},
		{
			name:       "malformed body",
			body:       `{"current":`,
			wantStatus: http.StatusBadRequest, wantCode: "BAD_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/decide", tt.body)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, errorCode(t, rec))
				return
			}
			body := decode(t, rec)
			assert.Equal(t, tt.wantNext, body["next_difficulty"])
			assert.Equal(t, tt.wantScore, body["score"])
		})
	}
}

func TestSessionLifecycle(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/sessions", `{"player_name":"ada","difficulty":"easy"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	session := decode(t, rec)
	assert.Equal(t, "Easy", session["current_difficulty"])
	assert.Equal(t, "active", session["status"])
	assert.Equal(t, 3.0, session["max_puzzles"])
	id := int64(session["id"].(float64))
	base := "/api/sessions/" + jsonInt(id)

	for i := 0; i < 3; i++ {
		rec = do(t, h, http.MethodPost, base+"/puzzles", "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		p := decode(t, rec)
		assert.NotContains(t, p, "answer", "answer must stay on the server")

		answer := solve(t, p)
		body := `{"puzzle_id":` + jsonInt(int64(p["id"].(float64))) + `,"answer":` + jsonInt(int64(answer)) + `,"elapsed_seconds":1.5}`
		rec = do(t, h, http.MethodPost, base+"/answers", body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		res := decode(t, rec)
		attempt := res["attempt"].(map[string]any)
		assert.Equal(t, true, attempt["correct"])
		decision := res["decision"].(map[string]any)
		assert.Equal(t, 100.0, decision["score"])
	}

	rec = do(t, h, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode(t, rec)
	assert.Equal(t, "completed", got["status"])
	assert.Equal(t, "Hard", got["current_difficulty"])
	assert.Equal(t, 0.0, got["remaining"])

	rec = do(t, h, http.MethodPost, base+"/puzzles", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))

	rec = do(t, h, http.MethodGet, base+"/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode(t, rec)
	assert.Equal(t, 3.0, summary["total_attempts"])
	assert.Equal(t, 100.0, summary["accuracy_pct"])
	assert.Equal(t, []any{"Easy", "Medium", "Hard"}, summary["difficulty_progression"])

	rec = do(t, h, http.MethodGet, "/api/sessions?status=completed&player=ada", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode(t, rec)
	assert.Equal(t, 1.0, list["total"])
}

func TestSubmitAnswer_Validation(t *testing.T) {
	h := newTestServer(t)
	rec := do(t, h, http.MethodPost, "/api/sessions", `{}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	session := decode(t, rec)
	assert.Equal(t, services.DefaultPlayerName, session["player_name"])
	assert.Equal(t, "Medium", session["initial_difficulty"])
	base := "/api/sessions/" + jsonInt(int64(session["id"].(float64)))

	rec = do(t, h, http.MethodPost, base+"/puzzles", "")
	require.Equal(t, http.StatusOK, rec.Code)
	p := decode(t, rec)
	puzzleID := jsonInt(int64(p["id"].(float64)))

	rec = do(t, h, http.MethodPost, base+"/answers", `{"puzzle_id":`+puzzleID+`,"answer":1,"elapsed_seconds":-2}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, h, http.MethodPost, base+"/answers", `{"puzzle_id":`+puzzleID+`,"answer":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, base+"/answers", `{"puzzle_id":999,"answer":1,"elapsed_seconds":2}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPost, base+"/answers", `{"puzzle_id":`+puzzleID+`,"answer":1,"elapsed_seconds":2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, h, http.MethodPost, base+"/answers", `{"puzzle_id":`+puzzleID+`,"answer":1,"elapsed_seconds":2}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CONFLICT", errorCode(t, rec))
}

func TestSessionErrors(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/sessions/42", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, rec))

	rec = do(t, h, http.MethodGet, "/api/sessions/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/sessions", `{"difficulty":"Expert"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))

	rec = do(t, h, http.MethodGet, "/api/sessions?status=paused", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEndSession(t *testing.T) {
	h := newTestServer(t)
	rec := do(t, h, http.MethodPost, "/api/sessions", `{"player_name":"grace"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	base := "/api/sessions/" + jsonInt(int64(decode(t, rec)["id"].(float64)))

	for i := 0; i < 2; i++ {
		rec = do(t, h, http.MethodPost, base+"/end", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "completed", decode(t, rec)["status"])
	}
}

func jsonInt(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}

// solve recomputes the answer from the operands the client sees.
func solve(t *testing.T, p map[string]any) int {
	t.Helper()
	a := int(p["operand1"].(float64))
	b := int(p["operand2"].(float64))
	op := difficulty.Operator(strings.TrimSpace(p["operator"].(string)))
	answer, err := puzzle.Apply(a, op, b)
	require.NoError(t, err)
	return answer
}
