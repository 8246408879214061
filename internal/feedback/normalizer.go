package feedback

import (
	"context"

	"go.uber.org/zap"

	"github.com/abhisek/rehearse/internal/llm"
	"github.com/abhisek/rehearse/internal/metrics"
	"github.com/abhisek/rehearse/internal/questions"
)

// Config holds scoring parameters.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns the scoring defaults.
func DefaultConfig() Config {
	return Config{MaxTokens: 1000}
}

// Normalizer asks the model for feedback and normalizes what comes back.
// It makes one provider call per Score and never persists anything.
type Normalizer struct {
	provider llm.Provider
	cfg      Config
	logger   *zap.Logger
}

// NewNormalizer creates a Normalizer. A nil logger disables logging.
func NewNormalizer(provider llm.Provider, cfg Config, logger *zap.Logger) *Normalizer {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultConfig().MaxTokens
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{provider: provider, cfg: cfg, logger: logger}
}

// Score rates every answer in in. Provider failures and unparseable replies
// come back as Result{Success: false}; both are safe to retry.
func (n *Normalizer) Score(ctx context.Context, in ScoreInput) Result {
	if in.ExperienceLevel == "" {
		in.ExperienceLevel = questions.DefaultLevel
	}
	if in.Industry == "" {
		in.Industry = questions.DefaultIndustry
	}

	prompt, err := buildPrompt(in)
	if err != nil {
		return Result{Error: err.Error()}
	}

	req := llm.UserPrompt(prompt, n.cfg.MaxTokens)
	req.Temperature = n.cfg.Temperature

	resp, err := n.provider.Generate(llm.WithPurpose(ctx, llm.PurposeFeedback), req)
	if err != nil {
		n.logger.Warn("feedback generation failed", zap.String("role", in.JobRole), zap.Error(err))
		return Result{Error: err.Error()}
	}

	reply, err := Parse(resp.Text)
	if err != nil {
		n.logger.Warn("unparseable feedback reply",
			zap.String("role", in.JobRole),
			zap.Int("reply_len", len(resp.Text)),
		)
		return Result{Error: ErrUnparseable.Error()}
	}

	for _, c := range ApplyPolicy(reply, in.Answers) {
		metrics.FeedbackOverrides.WithLabelValues(c.Reason).Inc()
		n.logger.Warn("suspicious feedback corrected",
			zap.String("reason", c.Reason),
			zap.String("question_id", c.QuestionID),
			zap.Int("answer_len", c.AnswerLen),
			zap.Float64("raw_score", c.RawScore),
		)
	}

	return reply.Result()
}

// Result converts a normalized reply into a successful Result. Later
// entries win when the model repeats an id.
func (r *Reply) Result() Result {
	scores := make(map[string]ScoreEntry, len(r.Entries))
	for _, e := range r.Entries {
		if e.Strengths == nil {
			e.Strengths = []string{}
		}
		if e.AreasToImprove == nil {
			e.AreasToImprove = []string{}
		}
		scores[e.ID] = e.ScoreEntry
	}
	return Result{Success: true, Scores: scores, Overall: r.Overall}
}
