// Package interview runs a rehearsal from question generation through
// scoring to the saved session.
package interview

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/rehearse/internal/feedback"
	"github.com/abhisek/rehearse/internal/metrics"
	"github.com/abhisek/rehearse/internal/questions"
	"github.com/abhisek/rehearse/internal/store"
)

// DefaultUserID is used when the caller supplies no user.
const DefaultUserID = "local"

// QuestionGenerator produces questions for a new draft.
type QuestionGenerator interface {
	Generate(ctx context.Context, req questions.Request) ([]questions.Question, error)
}

// Scorer scores a draft's answers.
type Scorer interface {
	Score(ctx context.Context, in feedback.ScoreInput) feedback.Result
}

// Config holds workflow settings.
type Config struct {
	QuestionCount int           `mapstructure:"question_count"`
	DraftTTL      time.Duration `mapstructure:"draft_ttl"`
}

// DefaultConfig returns the workflow defaults.
func DefaultConfig() Config {
	return Config{QuestionCount: questions.DefaultCount, DraftTTL: DefaultDraftTTL}
}

// StartInput describes a new rehearsal.
type StartInput struct {
	UserID          string `json:"userId"`
	JobRole         string `json:"jobRole"`
	ExperienceLevel string `json:"experienceLevel"`
	Industry        string `json:"industry"`
	Company         string `json:"company"`
	Count           int    `json:"count"`
}

// Outcome is a scored and saved rehearsal.
type Outcome struct {
	SessionID  string                         `json:"sessionId"`
	Scores     map[string]feedback.ScoreEntry `json:"scores"`
	Overall    *feedback.OverallScore         `json:"overall,omitempty"`
	TotalScore float64                        `json:"totalScore"`
}

// Service drives the rehearsal workflow.
type Service struct {
	gen      QuestionGenerator
	scorer   Scorer
	sessions store.SessionRepo
	drafts   DraftStore
	logger   *zap.Logger
	cfg      Config
	now      func() time.Time
}

// NewService wires the workflow. A nil logger disables logging.
func NewService(gen QuestionGenerator, scorer Scorer, sessions store.SessionRepo, drafts DraftStore, logger *zap.Logger, cfg Config) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.QuestionCount <= 0 {
		cfg.QuestionCount = questions.DefaultCount
	}
	return &Service{
		gen:      gen,
		scorer:   scorer,
		sessions: sessions,
		drafts:   drafts,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Start validates the role, generates questions and saves a draft with no
// answers.
func (s *Service) Start(ctx context.Context, in StartInput) (*Draft, error) {
	role, err := questions.ValidateRole(in.JobRole)
	if err != nil {
		return nil, err
	}

	req := questions.Request{
		JobRole:         role,
		ExperienceLevel: orDefault(in.ExperienceLevel, questions.DefaultLevel),
		Industry:        orDefault(in.Industry, questions.DefaultIndustry),
		Company:         strings.TrimSpace(in.Company),
		Count:           in.Count,
	}
	if req.Count <= 0 {
		req.Count = s.cfg.QuestionCount
	}

	qs, err := s.gen.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("generate questions: %w", err)
	}

	d := &Draft{
		ID:              uuid.NewString(),
		UserID:          orDefault(in.UserID, DefaultUserID),
		JobRole:         req.JobRole,
		ExperienceLevel: req.ExperienceLevel,
		Industry:        req.Industry,
		Company:         req.Company,
		Questions:       qs,
		Answers:         map[string]string{},
		CreatedAt:       s.now().UTC(),
	}
	if err := s.drafts.Save(ctx, d); err != nil {
		return nil, err
	}

	s.logger.Info("interview started",
		zap.String("draft_id", d.ID),
		zap.String("role", d.JobRole),
		zap.Int("questions", len(qs)),
	)
	return d, nil
}

// Get returns a draft.
func (s *Service) Get(ctx context.Context, draftID string) (*Draft, error) {
	return s.drafts.Get(ctx, draftID)
}

// Answer records the answer to one question. Answers to different
// questions of one draft never overwrite each other.
func (s *Service) Answer(ctx context.Context, draftID, questionID, text string) (*Draft, error) {
	return s.drafts.Update(ctx, draftID, func(d *Draft) error {
		if !d.HasQuestion(questionID) {
			return fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
		}
		if d.Answers == nil {
			d.Answers = map[string]string{}
		}
		d.Answers[questionID] = text
		return nil
	})
}

// Submit scores the draft and saves the session. Scoring failures keep
// the draft for a retry; a persistence failure still returns the scores
// inside a *PersistenceError. While one submission runs, others for the
// same draft fail with ErrSubmitInProgress.
func (s *Service) Submit(ctx context.Context, draftID string) (*Outcome, error) {
	release, err := s.drafts.Claim(ctx, draftID)
	if err != nil {
		return nil, err
	}
	defer release()

	d, err := s.drafts.Get(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if n := d.Unanswered(); n > 0 {
		metrics.ScoringTotal.WithLabelValues("unanswered").Inc()
		return nil, &UnansweredError{Count: n}
	}

	start := s.now()
	res := s.scorer.Score(ctx, feedback.ScoreInput{
		JobRole:         d.JobRole,
		Questions:       d.Questions,
		Answers:         d.Answers,
		ExperienceLevel: d.ExperienceLevel,
		Industry:        d.Industry,
		Company:         d.Company,
	})
	metrics.ScoringDuration.Observe(s.now().Sub(start).Seconds())

	if !res.Success {
		metrics.ScoringTotal.WithLabelValues("scoring_failed").Inc()
		s.logger.Warn("scoring failed", zap.String("draft_id", d.ID), zap.String("error", res.Error))
		return nil, &ScoringError{Message: res.Error}
	}

	total := TotalScore(d.Questions, res.Scores)
	id, err := s.sessions.CreateSession(ctx, newSession(d, res, total))
	if err != nil {
		metrics.ScoringTotal.WithLabelValues("persist_failed").Inc()
		s.logger.Error("saving scored session failed", zap.String("draft_id", d.ID), zap.Error(err))
		return nil, &PersistenceError{Err: err, Scores: res.Scores, Overall: res.Overall, TotalScore: total}
	}

	if err := s.drafts.Delete(ctx, d.ID); err != nil {
		s.logger.Warn("draft cleanup failed", zap.String("draft_id", d.ID), zap.Error(err))
	}
	metrics.ScoringTotal.WithLabelValues("ok").Inc()
	s.logger.Info("interview submitted",
		zap.String("session_id", id),
		zap.Float64("total_score", total),
	)

	return &Outcome{SessionID: id, Scores: res.Scores, Overall: res.Overall, TotalScore: total}, nil
}

// Abandon discards a draft, for example when the attention monitor ends
// the interview.
func (s *Service) Abandon(ctx context.Context, draftID, reason string) error {
	if _, err := s.drafts.Get(ctx, draftID); err != nil {
		return err
	}
	if err := s.drafts.Delete(ctx, draftID); err != nil {
		return err
	}
	s.logger.Info("interview abandoned", zap.String("draft_id", draftID), zap.String("reason", reason))
	return nil
}

// TotalScore is the mean score over questions that received a score,
// rounded to one decimal, or 0 when none did.
func TotalScore(qs []questions.Question, scores map[string]feedback.ScoreEntry) float64 {
	var sum float64
	var n int
	for _, q := range qs {
		if e, ok := scores[q.ID]; ok {
			sum += e.Score
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return feedback.Round1(sum / float64(n))
}

func newSession(d *Draft, res feedback.Result, total float64) store.NewSession {
	ns := store.NewSession{
		UserID:          d.UserID,
		JobRole:         d.JobRole,
		ExperienceLevel: d.ExperienceLevel,
		Industry:        d.Industry,
		Company:         d.Company,
		TotalScore:      total,
	}
	if res.Overall != nil {
		if b, err := json.Marshal(res.Overall); err == nil {
			ns.Overall = b
		}
	}
	for _, q := range d.Questions {
		r := store.NewResponse{QuestionID: q.ID, Question: q.Text, Answer: d.Answers[q.ID]}
		if e, ok := res.Scores[q.ID]; ok {
			score, fb := e.Score, e.Feedback
			r.Score = &score
			r.Feedback = &fb
			r.Strengths = e.Strengths
			r.AreasToImprove = e.AreasToImprove
		}
		ns.Responses = append(ns.Responses, r)
	}
	return ns
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}
