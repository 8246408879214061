package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/abhisek/rehearse/internal/analysis"
	"github.com/abhisek/rehearse/internal/attention"
	"github.com/abhisek/rehearse/internal/config"
	"github.com/abhisek/rehearse/internal/feedback"
	"github.com/abhisek/rehearse/internal/interview"
	"github.com/abhisek/rehearse/internal/llm"
	"github.com/abhisek/rehearse/internal/questions"
	"github.com/abhisek/rehearse/internal/store"
)

const questionReply = `[{"id": 1, "question": "How do you handle a failing deployment?"}, {"id": 2, "question": "How do you review code?"}]`

const feedbackReply = `{"questionFeedback": [
  {"id": "1", "score": 8, "feedback": "Clear rollback plan.", "strengths": ["ownership"], "areas_to_improve": []},
  {"id": "2", "score": 6, "feedback": "Reasonable.", "strengths": [], "areas_to_improve": ["examples"]}
], "overall": {"averageScore": 7, "generalFeedback": "Solid."}}`

const longAnswer = "I roll back first using the previous release artifact, then reproduce the failure in staging and add a regression test before redeploying."

type testEnv struct {
	srv    *Server
	mock   *llm.MockProvider
	store  *store.Store
	drafts *interview.MemoryDrafts
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.DB.WakeAttempts = 2
	cfg.DB.WakeDelay = time.Millisecond
	cfg.Attention = attention.Config{
		LookAwayThreshold: 30 * time.Millisecond,
		SampleInterval:    10 * time.Millisecond,
		MaxWarnings:       2,
		ScoreThreshold:    0.3,
		WarningDisplay:    50 * time.Millisecond,
	}
	return &cfg
}

func newTestEnv(t *testing.T, responses ...llm.MockResponse) *testEnv {
	t.Helper()
	st, err := store.Open(fmt.Sprintf("file:server_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_")))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	logger := zaptest.NewLogger(t)
	mock := llm.NewMockProvider(responses...)
	drafts := interview.NewMemoryDrafts(0)
	svc := interview.NewService(
		questions.NewGenerator(mock, questions.DefaultGeneratorConfig(), logger),
		feedback.NewNormalizer(mock, feedback.DefaultConfig(), logger),
		st.Sessions(),
		drafts,
		logger,
		interview.DefaultConfig(),
	)

	srv := New(testConfig(), Deps{
		Interviews: svc,
		Analysis:   analysis.New(mock, analysis.DefaultConfig(), logger),
		Sessions:   st.Sessions(),
		DB:         st,
		Catalog:    questions.DefaultCatalog(),
		Logger:     logger,
		Version:    "test",
	})
	return &testEnv{srv: srv, mock: mock, store: st, drafts: drafts}
}

func (e *testEnv) do(t *testing.T, method, path, body string) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

func (e *testEnv) startInterview(t *testing.T) string {
	t.Helper()
	code, body := e.do(t, http.MethodPost, "/api/interviews", `{"jobRole":"DevOps Engineer","company":"Acme"}`)
	require.Equal(t, http.StatusOK, code, body)
	draft := body["draft"].(map[string]any)
	return draft["id"].(string)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	code, body := env.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "test", body["version"])
}

func TestCatalog(t *testing.T) {
	env := newTestEnv(t)
	code, body := env.do(t, http.MethodGet, "/api/catalog", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, body["jobRoles"], len(questions.DefaultCatalog().Roles))
	assert.Contains(t, body["experienceLevels"], "Mid-Level")
}

func TestWake(t *testing.T) {
	env := newTestEnv(t)
	code, body := env.do(t, http.MethodGet, "/api/wake", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Database connection established", body["message"])
}

type downDB struct{}

func (downDB) Ping(context.Context) error { return errors.New("connection refused") }

func TestWake_Failure(t *testing.T) {
	env := newTestEnv(t)
	env.srv.db = downDB{}

	code, body := env.do(t, http.MethodGet, "/api/wake", "")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Error while trying to wake database", body["message"])
}

func TestStartInterview_Validation(t *testing.T) {
	env := newTestEnv(t)
	code, body := env.do(t, http.MethodPost, "/api/interviews", `{"jobRole":"  "}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Please enter a job role", body["error"])
}

func TestStartInterview_GenerationFailure(t *testing.T) {
	env := newTestEnv(t, llm.MockResponse{Text: "Sorry, I can't help with that."})
	code, body := env.do(t, http.MethodPost, "/api/interviews", `{"jobRole":"DevOps Engineer"}`)
	assert.Equal(t, http.StatusBadGateway, code)
	assert.Equal(t, "Failed to parse AI response. Please try again.", body["error"])
}

func TestInterviewLifecycle(t *testing.T) {
	env := newTestEnv(t,
		llm.MockResponse{Text: questionReply},
		llm.MockResponse{Text: feedbackReply},
	)
	id := env.startInterview(t)

	code, body := env.do(t, http.MethodPost, "/api/interviews/"+id+"/submit", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Please answer all questions before submitting. You have 2 unanswered questions.", body["error"])

	for _, qid := range []string{"1", "2"} {
		code, _ = env.do(t, http.MethodPut, "/api/interviews/"+id+"/answers/"+qid, `{"answer":"`+longAnswer+`"}`)
		require.Equal(t, http.StatusOK, code)
	}
	code, _ = env.do(t, http.MethodPut, "/api/interviews/"+id+"/answers/9", `{"answer":"x"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = env.do(t, http.MethodPost, "/api/interviews/"+id+"/submit", "")
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, 7.0, body["totalScore"])
	sessionID := body["sessionId"].(string)

	code, _ = env.do(t, http.MethodGet, "/api/interviews/"+id, "")
	assert.Equal(t, http.StatusNotFound, code, "draft is removed after a saved submission")

	code, body = env.do(t, http.MethodGet, "/api/sessions?userId="+interview.DefaultUserID, "")
	require.Equal(t, http.StatusOK, code)
	sessions := body["sessions"].([]any)
	require.Len(t, sessions, 1)
	assert.Equal(t, float64(2), sessions[0].(map[string]any)["questionCount"])

	code, body = env.do(t, http.MethodGet, "/api/sessions/"+sessionID, "")
	require.Equal(t, http.StatusOK, code)
	sess := body["session"].(map[string]any)
	assert.Equal(t, "DevOps Engineer", sess["jobRole"])
	assert.Equal(t, "Acme", sess["company"])
	assert.Equal(t, 7.0, sess["overall"].(map[string]any)["averageScore"])
	assert.Len(t, sess["responses"], 2)

	code, _ = env.do(t, http.MethodDelete, "/api/sessions/"+sessionID, "")
	assert.Equal(t, http.StatusOK, code)
	code, body = env.do(t, http.MethodGet, "/api/sessions/"+sessionID, "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Interview session not found", body["error"])
}

func TestSubmit_ScoringFailureIsRetryable(t *testing.T) {
	env := newTestEnv(t,
		llm.MockResponse{Text: questionReply},
		llm.MockResponse{Text: "no json here"},
	)
	id := env.startInterview(t)
	for _, qid := range []string{"1", "2"} {
		env.do(t, http.MethodPut, "/api/interviews/"+id+"/answers/"+qid, `{"answer":"`+longAnswer+`"}`)
	}

	code, body := env.do(t, http.MethodPost, "/api/interviews/"+id+"/submit", "")
	assert.Equal(t, http.StatusBadGateway, code)
	assert.Equal(t, true, body["retryable"])
	assert.Equal(t, "Failed to parse feedback response. Please try again.", body["error"])

	code, _ = env.do(t, http.MethodGet, "/api/interviews/"+id, "")
	assert.Equal(t, http.StatusOK, code, "draft survives a scoring failure")
}

func TestAbandonInterview(t *testing.T) {
	env := newTestEnv(t, llm.MockResponse{Text: questionReply})
	id := env.startInterview(t)

	code, _ := env.do(t, http.MethodDelete, "/api/interviews/"+id, "")
	assert.Equal(t, http.StatusOK, code)
	code, _ = env.do(t, http.MethodDelete, "/api/interviews/"+id, "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestListSessions_RequiresUser(t *testing.T) {
	env := newTestEnv(t)
	code, body := env.do(t, http.MethodGet, "/api/sessions", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "User ID is required", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodGet, "/health", "")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	env.srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `rehearse_http_requests_total{method="GET",route="/health",status="200"}`)
}

func TestSubmitWhileScoring(t *testing.T) {
	env := newTestEnv(t, llm.MockResponse{Text: questionReply})
	id := env.startInterview(t)
	for _, qid := range []string{"1", "2"} {
		code, _ := env.do(t, http.MethodPut, "/api/interviews/"+id+"/answers/"+qid, `{"answer":"`+longAnswer+`"}`)
		require.Equal(t, http.StatusOK, code)
	}

	release, err := env.drafts.Claim(context.Background(), id)
	require.NoError(t, err)
	defer release()

	code, body := env.do(t, http.MethodPost, "/api/interviews/"+id+"/submit", "")
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Your answers are already being scored.", body["error"])
	assert.Equal(t, 1, env.mock.CallCount(), "no scoring call while another submission holds the draft")
}
