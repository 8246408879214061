package interview

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/abhisek/rehearse/internal/feedback"
	"github.com/abhisek/rehearse/internal/llm"
	"github.com/abhisek/rehearse/internal/questions"
	"github.com/abhisek/rehearse/internal/store"
)

const questionReply = `[{"id": 1, "question": "How have you improved the performance of a backend service?"}, {"id": 2, "question": "How do you approach API versioning?"}]`

const longAnswer = "I used REST APIs and optimized database queries for a checkout service, including adding indexes and caching frequent lookups."

const feedbackReply = `{"questionFeedback": [
  {"id": "1", "score": 8, "feedback": "Solid detail on indexing.", "strengths": ["indexing"], "areas_to_improve": ["metrics"]},
  {"id": "2", "score": 7, "feedback": "Good.", "strengths": ["brevity"], "areas_to_improve": []}
], "overall": {"averageScore": 7.5, "generalFeedback": "Promising."}}`

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(fmt.Sprintf("file:interview_%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestService(t *testing.T, mock *llm.MockProvider, repo store.SessionRepo) (*Service, *MemoryDrafts) {
	t.Helper()
	logger := zaptest.NewLogger(t)
	drafts := NewMemoryDrafts(0)
	svc := NewService(
		questions.NewGenerator(mock, questions.DefaultGeneratorConfig(), logger),
		feedback.NewNormalizer(mock, feedback.DefaultConfig(), logger),
		repo,
		drafts,
		logger,
		DefaultConfig(),
	)
	return svc, drafts
}

func TestService_FullRehearsal(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	mock := llm.NewMockProvider(
		llm.MockResponse{Text: questionReply},
		llm.MockResponse{Text: feedbackReply},
	)
	svc, drafts := newTestService(t, mock, st.Sessions())

	d, err := svc.Start(ctx, StartInput{JobRole: "Backend Developer", Company: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, DefaultUserID, d.UserID)
	assert.Equal(t, questions.DefaultLevel, d.ExperienceLevel)
	assert.Equal(t, questions.DefaultIndustry, d.Industry)
	require.Len(t, d.Questions, 2)
	assert.Empty(t, d.Answers)

	_, err = svc.Answer(ctx, d.ID, "1", longAnswer)
	require.NoError(t, err)
	_, err = svc.Answer(ctx, d.ID, "2", "ok")
	require.NoError(t, err)

	out, err := svc.Submit(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 8.0, out.Scores["1"].Score)
	assert.LessOrEqual(t, out.Scores["2"].Score, 2.0)
	assert.Equal(t, 5.0, out.TotalScore)
	assert.Equal(t, 5.0, out.Overall.AverageScore)

	// The draft is gone and the session is stored.
	_, err = drafts.Get(ctx, d.ID)
	assert.ErrorIs(t, err, ErrDraftNotFound)

	saved, err := st.Sessions().GetSession(ctx, out.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "Backend Developer", saved.JobRole)
	assert.Equal(t, "Acme", saved.Company)
	assert.Equal(t, 5.0, saved.TotalScore)
	require.Len(t, saved.Responses, 2)
	assert.Equal(t, "ok", saved.Responses[1].Answer)
	require.NotNil(t, saved.Responses[1].Score)
	assert.Equal(t, 2.0, *saved.Responses[1].Score)
	assert.Contains(t, string(saved.Overall), `"averageScore":5`)
}

func TestService_StartValidatesRole(t *testing.T) {
	mock := llm.NewMockProvider()
	svc, _ := newTestService(t, mock, nil)

	_, err := svc.Start(context.Background(), StartInput{JobRole: " "})
	assert.ErrorIs(t, err, questions.ErrEmptyRole)
	assert.Equal(t, 0, mock.CallCount())
}

func TestService_StartGenerationFailure(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: "nothing useful"})
	svc, drafts := newTestService(t, mock, nil)

	_, err := svc.Start(context.Background(), StartInput{JobRole: "QA Engineer"})
	assert.ErrorIs(t, err, questions.ErrUnparseable)
	assert.Equal(t, 0, drafts.Len())
}

func TestService_AnswerUnknownQuestion(t *testing.T) {
	ctx := context.Background()
	mock := llm.NewMockProvider(llm.MockResponse{Text: questionReply})
	svc, _ := newTestService(t, mock, nil)

	d, err := svc.Start(ctx, StartInput{JobRole: "QA Engineer"})
	require.NoError(t, err)

	_, err = svc.Answer(ctx, d.ID, "nope", "text")
	assert.ErrorIs(t, err, ErrUnknownQuestion)

	_, err = svc.Answer(ctx, "missing-draft", "1", "text")
	assert.ErrorIs(t, err, ErrDraftNotFound)
}

func TestService_SubmitUnansweredGate(t *testing.T) {
	ctx := context.Background()
	mock := llm.NewMockProvider(llm.MockResponse{Text: questionReply})
	svc, _ := newTestService(t, mock, nil)

	d, err := svc.Start(ctx, StartInput{JobRole: "QA Engineer"})
	require.NoError(t, err)

	_, err = svc.Submit(ctx, d.ID)
	var ue *UnansweredError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, 2, ue.Count)
	assert.Equal(t, "Please answer all questions before submitting. You have 2 unanswered questions.", err.Error())

	_, err = svc.Answer(ctx, d.ID, "1", "   ")
	require.NoError(t, err)
	_, err = svc.Answer(ctx, d.ID, "2", "An answer.")
	require.NoError(t, err)

	_, err = svc.Submit(ctx, d.ID)
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "Please answer all questions before submitting. You have 1 unanswered question.", err.Error())
	assert.Equal(t, 1, mock.CallCount(), "scoring must not run while answers are missing")
}

func TestService_ScoringFailureKeepsDraft(t *testing.T) {
	ctx := context.Background()
	mock := llm.NewMockProvider(
		llm.MockResponse{Text: questionReply},
		llm.MockResponse{Text: "I cannot grade this."},
		llm.MockResponse{Text: feedbackReply},
	)
	st := openStore(t)
	svc, _ := newTestService(t, mock, st.Sessions())

	d, err := svc.Start(ctx, StartInput{JobRole: "QA Engineer"})
	require.NoError(t, err)
	_, _ = svc.Answer(ctx, d.ID, "1", longAnswer)
	_, _ = svc.Answer(ctx, d.ID, "2", longAnswer)

	_, err = svc.Submit(ctx, d.ID)
	var se *ScoringError
	require.ErrorAs(t, err, &se)
	assert.True(t, se.Retryable())
	assert.Equal(t, "Failed to parse feedback response. Please try again.", se.Error())

	list, err := st.Sessions().ListSessions(ctx, DefaultUserID)
	require.NoError(t, err)
	assert.Empty(t, list, "nothing is stored after a scoring failure")

	out, err := svc.Submit(ctx, d.ID)
	require.NoError(t, err, "retry should succeed with the kept draft")
	assert.Equal(t, 7.5, out.TotalScore)
}

type failingRepo struct{ store.SessionRepo }

func (failingRepo) CreateSession(context.Context, store.NewSession) (string, error) {
	return "", errors.New("database is locked")
}

func TestService_PersistenceFailureCarriesScores(t *testing.T) {
	ctx := context.Background()
	mock := llm.NewMockProvider(
		llm.MockResponse{Text: questionReply},
		llm.MockResponse{Text: feedbackReply},
	)
	svc, drafts := newTestService(t, mock, failingRepo{})

	d, err := svc.Start(ctx, StartInput{JobRole: "QA Engineer"})
	require.NoError(t, err)
	_, _ = svc.Answer(ctx, d.ID, "1", longAnswer)
	_, _ = svc.Answer(ctx, d.ID, "2", longAnswer)

	_, err = svc.Submit(ctx, d.ID)
	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, pe.Error(), "database is locked")
	assert.Equal(t, 7.5, pe.TotalScore)
	assert.Len(t, pe.Scores, 2)

	var se *ScoringError
	assert.False(t, errors.As(err, &se), "persistence failure must be distinct from scoring failure")

	_, err = drafts.Get(ctx, d.ID)
	assert.NoError(t, err, "draft is kept when saving fails")
}

func TestService_ConcurrentAnswersAllKept(t *testing.T) {
	ctx := context.Background()
	mock := llm.NewMockProvider(llm.MockResponse{Text: questionReply})
	svc, _ := newTestService(t, mock, nil)

	d, err := svc.Start(ctx, StartInput{JobRole: "QA Engineer"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, q := range d.Questions {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := svc.Answer(ctx, d.ID, id, longAnswer)
			assert.NoError(t, err)
		}(q.ID)
	}
	wg.Wait()

	got, err := svc.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Unanswered())
}

// gatedScorer blocks inside Score until proceed is closed.
type gatedScorer struct {
	entered chan struct{}
	proceed chan struct{}
}

func (g *gatedScorer) Score(_ context.Context, in feedback.ScoreInput) feedback.Result {
	g.entered <- struct{}{}
	<-g.proceed
	scores := make(map[string]feedback.ScoreEntry, len(in.Questions))
	for _, q := range in.Questions {
		scores[q.ID] = feedback.ScoreEntry{Score: 6, Feedback: "Fine."}
	}
	return feedback.Result{Success: true, Scores: scores, Overall: &feedback.OverallScore{AverageScore: 6}}
}

func TestService_SubmitOncePerDraft(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	logger := zaptest.NewLogger(t)
	mock := llm.NewMockProvider(llm.MockResponse{Text: questionReply})
	scorer := &gatedScorer{entered: make(chan struct{}), proceed: make(chan struct{})}
	svc := NewService(
		questions.NewGenerator(mock, questions.DefaultGeneratorConfig(), logger),
		scorer,
		st.Sessions(),
		NewMemoryDrafts(0),
		logger,
		DefaultConfig(),
	)

	d, err := svc.Start(ctx, StartInput{JobRole: "QA Engineer"})
	require.NoError(t, err)
	_, err = svc.Answer(ctx, d.ID, "1", longAnswer)
	require.NoError(t, err)
	_, err = svc.Answer(ctx, d.ID, "2", longAnswer)
	require.NoError(t, err)

	first := make(chan error, 1)
	go func() {
		_, err := svc.Submit(ctx, d.ID)
		first <- err
	}()
	<-scorer.entered

	_, err = svc.Submit(ctx, d.ID)
	assert.ErrorIs(t, err, ErrSubmitInProgress)

	close(scorer.proceed)
	require.NoError(t, <-first)

	_, err = svc.Submit(ctx, d.ID)
	assert.ErrorIs(t, err, ErrDraftNotFound)

	list, err := st.Sessions().ListSessions(ctx, DefaultUserID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestService_Abandon(t *testing.T) {
	ctx := context.Background()
	mock := llm.NewMockProvider(llm.MockResponse{Text: questionReply})
	svc, drafts := newTestService(t, mock, nil)

	d, err := svc.Start(ctx, StartInput{JobRole: "QA Engineer"})
	require.NoError(t, err)

	require.NoError(t, svc.Abandon(ctx, d.ID, "too many attention warnings"))
	assert.Equal(t, 0, drafts.Len())
	assert.ErrorIs(t, svc.Abandon(ctx, d.ID, "again"), ErrDraftNotFound)
}

func TestTotalScore(t *testing.T) {
	qs := []questions.Question{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	tests := []struct {
		name   string
		scores map[string]feedback.ScoreEntry
		want   float64
	}{
		{"none scored", nil, 0},
		{"ignores unscored", map[string]feedback.ScoreEntry{"a": {Score: 7}, "b": {Score: 8}}, 7.5},
		{"ignores unknown ids", map[string]feedback.ScoreEntry{"a": {Score: 4}, "zzz": {Score: 10}}, 4},
		{"rounds", map[string]feedback.ScoreEntry{"a": {Score: 7}, "b": {Score: 8}, "c": {Score: 8}}, 7.7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TotalScore(qs, tt.scores))
		})
	}
}
