// Package analysis runs the single-answer helpers: grammar correction,
// sentiment classification and a short free-form comment.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/abhisek/rehearse/internal/llm"
)

// MaxTextLen caps the answer text accepted for analysis, in runes.
const MaxTextLen = 4000

var (
	// ErrEmptyText is returned for blank input.
	ErrEmptyText = errors.New("text required")

	// ErrTextTooLong is returned when the input exceeds MaxTextLen.
	ErrTextTooLong = fmt.Errorf("text longer than %d characters", MaxTextLen)

	// ErrEmptyReply is returned when the model answers with nothing usable.
	ErrEmptyReply = errors.New("empty model reply")
)

// Config holds generation parameters.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns the analysis defaults.
func DefaultConfig() Config {
	return Config{MaxTokens: 400}
}

// Analyzer runs the helpers against a text generation provider.
type Analyzer struct {
	provider llm.Provider
	cfg      Config
	logger   *zap.Logger
}

// New creates an Analyzer. A nil logger disables logging.
func New(provider llm.Provider, cfg Config, logger *zap.Logger) *Analyzer {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultConfig().MaxTokens
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{provider: provider, cfg: cfg, logger: logger}
}

// Correct returns text with grammar and spelling fixed.
func (a *Analyzer) Correct(ctx context.Context, text string) (string, error) {
	reply, err := a.run(ctx, llm.PurposeGrammar, grammarPrompt, text)
	if err != nil {
		return "", err
	}
	return cleanProse(reply)
}

// Comment returns a short piece of coaching feedback on one answer.
func (a *Analyzer) Comment(ctx context.Context, text string) (string, error) {
	reply, err := a.run(ctx, llm.PurposeComment, commentPrompt, text)
	if err != nil {
		return "", err
	}
	return cleanProse(reply)
}

// Sentiment classifies the tone of text. Labels come back ordered by
// descending score.
func (a *Analyzer) Sentiment(ctx context.Context, text string) ([]Label, error) {
	reply, err := a.run(ctx, llm.PurposeSentiment, sentimentPrompt, text)
	if err != nil {
		return nil, err
	}
	labels, err := ParseSentiment(reply)
	if err != nil {
		a.logger.Warn("unparseable sentiment reply", zap.Int("reply_len", len(reply)))
		return nil, err
	}
	return labels, nil
}

func (a *Analyzer) run(ctx context.Context, purpose string, tmpl promptTemplate, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyText
	}
	if utf8.RuneCountInString(text) > MaxTextLen {
		return "", ErrTextTooLong
	}

	prompt, err := tmpl.build(text)
	if err != nil {
		return "", fmt.Errorf("build %s prompt: %w", purpose, err)
	}
	req := llm.UserPrompt(prompt, a.cfg.MaxTokens)
	req.Temperature = a.cfg.Temperature

	resp, err := a.provider.Generate(llm.WithPurpose(ctx, purpose), req)
	if err != nil {
		a.logger.Warn("answer analysis failed", zap.String("purpose", purpose), zap.Error(err))
		return "", err
	}
	return resp.Text, nil
}

// cleanProse strips code fences and wrapping quotes some models add
// around a plain-text reply.
func cleanProse(reply string) (string, error) {
	s := strings.TrimSpace(reply)
	s = strings.TrimPrefix(s, "```text")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if s == "" {
		return "", ErrEmptyReply
	}
	return s, nil
}
