package questions

import "github.com/abhisek/rehearse/internal/llm"

// listSchema checks a decoded question list before it is trusted.
var listSchema = &llm.Schema{
	Name: "question-list",
	Definition: map[string]any{
		"type":     "array",
		"minItems": 1,
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id":       map[string]any{"type": []any{"string", "number", "null"}},
				"question": map[string]any{"type": "string"},
			},
			"required": []any{"question"},
		},
	},
}
