package feedback

import "github.com/abhisek/rehearse/internal/llm"

var stringList = map[string]any{
	"type":  []any{"array", "null"},
	"items": map[string]any{"type": "string"},
}

// replySchema checks a decoded feedback reply before it is trusted.
var replySchema = &llm.Schema{
	Name: "interview-feedback",
	Definition: map[string]any{
		"type":     "object",
		"required": []any{"questionFeedback"},
		"properties": map[string]any{
			"questionFeedback": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":     "object",
					"required": []any{"id", "score"},
					"properties": map[string]any{
						"id":               map[string]any{"type": []any{"string", "number"}},
						"score":            map[string]any{"type": "number"},
						"feedback":         map[string]any{"type": []any{"string", "null"}},
						"strengths":        stringList,
						"areas_to_improve": stringList,
					},
				},
			},
			"overall": map[string]any{
				"type": []any{"object", "null"},
				"properties": map[string]any{
					"averageScore":         map[string]any{"type": []any{"number", "null"}},
					"generalFeedback":      map[string]any{"type": []any{"string", "null"}},
					"keyStrengths":         stringList,
					"developmentAreas":     stringList,
					"hiringRecommendation": map[string]any{"type": []any{"string", "null"}},
				},
			},
		},
	},
}
