package jsonextract

import (
	"errors"
	"fmt"
	"testing"
)

func TestCandidate(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		shape Shape
		want  string
	}{
		{
			name:  "json fence",
			text:  "Sure!\n```json\n[{\"id\":\"q1\",\"question\":\"A?\"}]\n```\nGood luck.",
			shape: ShapeArray,
			want:  `[{"id":"q1","question":"A?"}]`,
		},
		{
			name:  "plain fence",
			text:  "```\n{\"questionFeedback\":[]}\n```",
			shape: ShapeObject,
			want:  `{"questionFeedback":[]}`,
		},
		{
			name:  "json fence wins over earlier plain fence",
			text:  "```\nnot this\n```\n```json\n[{\"a\":1}]\n```",
			shape: ShapeArray,
			want:  `[{"a":1}]`,
		},
		{
			name:  "bare array",
			text:  `[{"id":1,"question":"A?"},{"id":2,"question":"B?"}]`,
			shape: ShapeArray,
			want:  `[{"id":1,"question":"A?"},{"id":2,"question":"B?"}]`,
		},
		{
			name:  "prose wrapped array",
			text:  `Here are your questions: [{"question":"A?"}] Let me know if you need more.`,
			shape: ShapeArray,
			want:  `[{"question":"A?"}]`,
		},
		{
			name:  "prose wrapped object",
			text:  `Evaluation follows. {"questionFeedback":[{"id":"q1","score":6}]} Thanks!`,
			shape: ShapeObject,
			want:  `{"questionFeedback":[{"id":"q1","score":6}]}`,
		},
		{
			name:  "fallback trims noise around whole text",
			text:  `  garbage { broken json here ] tail `,
			shape: ShapeObject,
			want:  `{ broken json here ]`,
		},
		{
			name:  "no brackets at all",
			text:  "I cannot help with that.",
			shape: ShapeArray,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Candidate(tt.text, tt.shape)
			if got != tt.want {
				t.Fatalf("Candidate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecode_Succeeds(t *testing.T) {
	inputs := []string{
		"```json\n{\"questionFeedback\":[{\"id\":\"q1\",\"score\":7}]}\n```",
		`{"questionFeedback":[{"id":"q1","score":7}]}`,
		`Here is my evaluation: {"questionFeedback":[{"id":"q1","score":7}]} Hope this helps.`,
	}
	for _, in := range inputs {
		var v struct {
			QuestionFeedback []struct {
				ID    string  `json:"id"`
				Score float64 `json:"score"`
			} `json:"questionFeedback"`
		}
		if _, err := Decode(in, ShapeObject, &v); err != nil {
			t.Fatalf("Decode(%q): %v", in, err)
		}
		if len(v.QuestionFeedback) != 1 || v.QuestionFeedback[0].Score != 7 {
			t.Fatalf("Decode(%q) = %+v", in, v)
		}
	}
}

func TestDecode_FailsWithCandidate(t *testing.T) {
	var v []any
	c, err := Decode(`[{"question": "What is "DI"?"}]`, ShapeArray, &v)
	if !errors.Is(err, ErrUnparseable) {
		t.Fatalf("expected ErrUnparseable, got %v", err)
	}
	if c == "" {
		t.Fatal("expected candidate to be returned for rescue")
	}

	_, err = Decode("no structure here", ShapeArray, &v)
	if !errors.Is(err, ErrUnparseable) {
		t.Fatalf("expected ErrUnparseable, got %v", err)
	}
}

func TestParseError_MatchesSentinel(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &ParseError{Message: "Failed to parse AI response. Please try again."})
	if !errors.Is(err, ErrUnparseable) {
		t.Fatal("ParseError should match ErrUnparseable")
	}
	var pe *ParseError
	if !errors.As(err, &pe) || pe.Error() != "Failed to parse AI response. Please try again." {
		t.Fatalf("errors.As = %v", pe)
	}
}
