package analysis

import (
	"cmp"
	"encoding/json"
	"math"
	"slices"
	"strings"

	"github.com/abhisek/rehearse/internal/jsonextract"
	"github.com/abhisek/rehearse/internal/llm"
)

// Sentiment labels.
const (
	Negative = "negative"
	Neutral  = "neutral"
	Positive = "positive"
)

// ErrUnparseable is returned when no sentiment label could be read from the
// model reply. It matches jsonextract.ErrUnparseable.
var ErrUnparseable = &jsonextract.ParseError{Message: "Failed to parse sentiment response. Please try again."}

// Label is one sentiment class with its probability.
type Label struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

var labelSchema = &llm.Schema{
	Name: "answer-sentiment",
	Definition: map[string]any{
		"type":     "array",
		"minItems": 1,
		"items": map[string]any{
			"type":     "object",
			"required": []any{"label", "score"},
			"properties": map[string]any{
				"label": map[string]any{"type": "string"},
				"score": map[string]any{"type": "number"},
			},
		},
	},
}

// Classifier-style names some models echo back.
var labelAliases = map[string]string{
	"label_0": Negative,
	"label_1": Neutral,
	"label_2": Positive,
	"neg":     Negative,
	"neu":     Neutral,
	"pos":     Positive,
}

// ParseSentiment reads labels from a model reply. Unknown labels are
// dropped, repeated labels keep the higher score, scores are clamped to
// [0, 1] and the result is ordered by descending score.
func ParseSentiment(text string) ([]Label, error) {
	var raw any
	candidate, err := jsonextract.Decode(text, jsonextract.ShapeArray, &raw)
	if err != nil {
		return nil, ErrUnparseable
	}
	if err := llm.Validate(labelSchema, raw); err != nil {
		return nil, ErrUnparseable
	}
	var in []Label
	if err := json.Unmarshal([]byte(candidate), &in); err != nil {
		return nil, ErrUnparseable
	}

	best := map[string]float64{}
	for _, l := range in {
		name := normalizeLabel(l.Label)
		if name == "" {
			continue
		}
		score := math.Max(0, math.Min(1, l.Score))
		if prev, ok := best[name]; !ok || score > prev {
			best[name] = score
		}
	}
	if len(best) == 0 {
		return nil, ErrUnparseable
	}

	out := make([]Label, 0, len(best))
	for name, score := range best {
		out = append(out, Label{Label: name, Score: score})
	}
	slices.SortFunc(out, func(a, b Label) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return strings.Compare(a.Label, b.Label)
	})
	return out, nil
}

func normalizeLabel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case Negative, Neutral, Positive:
		return s
	}
	return labelAliases[s]
}
