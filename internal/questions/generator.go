package questions

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/abhisek/rehearse/internal/jsonextract"
	"github.com/abhisek/rehearse/internal/llm"
)

// ErrUnparseable is returned when no question could be recovered from the
// model reply. It matches jsonextract.ErrUnparseable.
var ErrUnparseable = &jsonextract.ParseError{Message: "Failed to parse AI response. Please try again."}

// GeneratorConfig holds generation parameters.
type GeneratorConfig struct {
	MaxTokens   int
	Temperature float64
}

// DefaultGeneratorConfig returns the generation defaults.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{MaxTokens: 800}
}

// Generator produces interview questions from a text generation provider.
type Generator struct {
	provider llm.Provider
	cfg      GeneratorConfig
	logger   *zap.Logger
}

// NewGenerator creates a Generator. A nil logger disables logging.
func NewGenerator(provider llm.Provider, cfg GeneratorConfig, logger *zap.Logger) *Generator {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultGeneratorConfig().MaxTokens
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{provider: provider, cfg: cfg, logger: logger}
}

// Generate asks the provider for questions and recovers them from the reply.
func (g *Generator) Generate(ctx context.Context, req Request) ([]Question, error) {
	role, err := ValidateRole(req.JobRole)
	if err != nil {
		return nil, err
	}
	req.JobRole = role
	req = req.withDefaults()

	prompt, err := buildPrompt(req)
	if err != nil {
		return nil, fmt.Errorf("build question prompt: %w", err)
	}

	llmReq := llm.UserPrompt(prompt, g.cfg.MaxTokens)
	llmReq.Temperature = g.cfg.Temperature

	resp, err := g.provider.Generate(llm.WithPurpose(ctx, llm.PurposeQuestionGen), llmReq)
	if err != nil {
		return nil, fmt.Errorf("generate questions: %w", err)
	}

	qs, err := Parse(resp.Text)
	if err != nil {
		g.logger.Warn("unparseable question reply",
			zap.String("role", req.JobRole),
			zap.Int("reply_len", len(resp.Text)),
		)
		return nil, err
	}

	g.logger.Debug("generated questions",
		zap.String("role", req.JobRole),
		zap.Int("count", len(qs)),
	)
	return qs, nil
}

// Parse recovers questions from a raw model reply. The reply may be an array
// of {id, question} objects or an object with a "questions" array; when it
// does not parse, "question" strings are rescued from the text and numbered
// q1, q2, ...
func Parse(text string) ([]Question, error) {
	var raw any
	if _, err := jsonextract.Decode(text, jsonextract.ShapeArray, &raw); err == nil {
		items := listOf(raw)
		if llm.Validate(listSchema, items) == nil {
			if qs := normalize(items); len(qs) > 0 {
				return qs, nil
			}
			return nil, ErrUnparseable
		}
	}

	var qs []Question
	for i, s := range jsonextract.RescueStrings(text, "question") {
		if s = strings.TrimSpace(s); s == "" {
			continue
		}
		qs = append(qs, Question{ID: defaultID(i), Text: s})
	}
	if len(qs) == 0 {
		return nil, ErrUnparseable
	}
	return qs, nil
}

func listOf(raw any) []any {
	switch v := raw.(type) {
	case []any:
		return v
	case map[string]any:
		if list, ok := v["questions"].([]any); ok {
			return list
		}
		return []any{}
	}
	return nil
}

func normalize(items []any) []Question {
	qs := make([]Question, 0, len(items))
	for i, item := range items {
		obj, _ := item.(map[string]any)
		text, _ := obj["question"].(string)
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		qs = append(qs, Question{ID: normalizeID(obj["id"], i), Text: text})
	}
	return qs
}

func normalizeID(v any, index int) string {
	switch id := v.(type) {
	case string:
		if id = strings.TrimSpace(id); id != "" {
			return id
		}
	case float64:
		if id != 0 {
			return strconv.FormatFloat(id, 'f', -1, 64)
		}
	case json.Number:
		if id.String() != "0" {
			return id.String()
		}
	}
	return defaultID(index)
}

func defaultID(index int) string {
	return "q" + strconv.Itoa(index+1)
}
