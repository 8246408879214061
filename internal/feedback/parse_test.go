package feedback

import (
	"errors"
	"testing"

	"github.com/abhisek/rehearse/internal/jsonextract"
)

const cleanReply = `{
  "questionFeedback": [
    {"id": "q1", "score": 7, "feedback": "Covers indexing well.", "strengths": ["indexing"], "areas_to_improve": ["metrics"]},
    {"id": 2, "score": 4, "feedback": "Thin.", "strengths": [], "areas_to_improve": ["depth"]}
  ],
  "overall": {"averageScore": 9.9, "generalFeedback": "Decent.", "keyStrengths": ["sql"], "developmentAreas": ["depth"], "hiringRecommendation": "Maybe"}
}`

func TestParse_Shapes(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"json fence", "```json\n" + cleanReply + "\n```"},
		{"bare object", cleanReply},
		{"prose wrapped", "Sure! Here is the evaluation you asked for:\n" + cleanReply + "\nLet me know if you need anything else."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Parse(tt.text)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if len(r.Entries) != 2 {
				t.Fatalf("entries = %d, want 2", len(r.Entries))
			}
			if r.Entries[0].ID != "q1" || r.Entries[0].Score != 7 {
				t.Errorf("entry[0] = %+v", r.Entries[0])
			}
			if r.Entries[1].ID != "2" || r.Entries[1].Score != 4 {
				t.Errorf("entry[1] = %+v", r.Entries[1])
			}
			if r.Overall == nil || r.Overall.HiringRecommendation != "Maybe" {
				t.Errorf("overall = %+v", r.Overall)
			}
		})
	}
}

func TestParse_RescuesTruncatedReply(t *testing.T) {
	text := `{"questionFeedback": [{"id": "q1", "score": 7, "feedback": "Good use of indexes.", "strengths": ["indexing"], "areas_to_improve": ["metrics"]}, {"id": 2, "score": 5, "feedback": "Brief`

	r, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(r.Entries) != 2 {
		t.Fatalf("entries = %+v", r.Entries)
	}
	first := r.Entries[0]
	if first.ID != "q1" || first.Score != 7 || first.Feedback != "Good use of indexes." {
		t.Errorf("entry[0] = %+v", first)
	}
	if len(first.Strengths) != 1 || first.Strengths[0] != "indexing" {
		t.Errorf("strengths = %v", first.Strengths)
	}
	if r.Entries[1].ID != "2" || r.Entries[1].Score != 5 {
		t.Errorf("entry[1] = %+v", r.Entries[1])
	}
	if r.Overall != nil {
		t.Errorf("overall = %+v, want nil", r.Overall)
	}
}

func TestParse_SchemaFailureFallsBackToRescue(t *testing.T) {
	text := `{"questionFeedback": [{"id": "q1", "score": "8", "feedback": "Solid."}, {"feedback": "no id or score"}], "overall": {"generalFeedback": "Fine overall."}}`

	r, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(r.Entries) != 1 || r.Entries[0].Score != 8 || r.Entries[0].Feedback != "Solid." {
		t.Fatalf("entries = %+v", r.Entries)
	}
	if r.Overall == nil || r.Overall.GeneralFeedback != "Fine overall." {
		t.Errorf("overall = %+v", r.Overall)
	}
}

func TestParse_Unparseable(t *testing.T) {
	for _, text := range []string{
		"I am unable to evaluate these answers.",
		`{"questionFeedback": []}`,
		`{"questionFeedback": [{"feedback": "missing everything"}]}`,
	} {
		_, err := Parse(text)
		if !errors.Is(err, ErrUnparseable) || !errors.Is(err, jsonextract.ErrUnparseable) {
			t.Errorf("Parse(%q) error = %v, want ErrUnparseable", text, err)
		}
	}
}

func TestParse_ClampsScores(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"strict", `{"questionFeedback": [{"id": "q1", "score": 15}, {"id": "q2", "score": 0}, {"id": "q3", "score": -3}, {"id": "q4", "score": 6.5}]}`},
		{"rescued", `{"questionFeedback": [{"id": "q1", "score": 15}, {"id": "q2", "score": 0}, {"id": "q3", "score": -3}, {"id": "q4", "score": 6.5}, {"id": "q5", "sco`},
	}
	want := map[string]float64{"q1": 10, "q2": 1, "q3": 1, "q4": 6.5}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Parse(tt.text)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if len(r.Entries) != len(want) {
				t.Fatalf("entries = %+v", r.Entries)
			}
			for _, e := range r.Entries {
				if e.Score != want[e.ID] {
					t.Errorf("%s score = %v, want %v", e.ID, e.Score, want[e.ID])
				}
			}
		})
	}
}

func TestParse_RepeatedIDLastWins(t *testing.T) {
	text := `{"questionFeedback": [{"id": "q1", "score": 9, "feedback": "first"}, {"id": "q2", "score": 6}, {"id": "q1", "score": 5, "feedback": "second"}]}`

	r, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(r.Entries) != 2 {
		t.Fatalf("entries = %+v, want 2", r.Entries)
	}
	if r.Entries[0].ID != "q1" || r.Entries[0].Score != 5 || r.Entries[0].Feedback != "second" {
		t.Errorf("entry[0] = %+v", r.Entries[0])
	}
	if r.Entries[1].ID != "q2" {
		t.Errorf("entry[1] = %+v", r.Entries[1])
	}
}
