package jsonextract

import (
	"reflect"
	"testing"
)

func TestRescueStrings(t *testing.T) {
	text := `[{"id": 1, "question": "Tell me about yourself."}, {"id": 2 "question" : "Why \"this\" team?"},`
	got := RescueStrings(text, "question")
	want := []string{"Tell me about yourself.", `Why \`}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("RescueStrings() = %q, want %q", got, want)
	}
	if RescueStrings("nothing", "question") != nil {
		t.Fatal("expected nil for no matches")
	}
}

func TestRescueNumber(t *testing.T) {
	tests := []struct {
		text string
		want float64
		ok   bool
	}{
		{`"score": 7`, 7, true},
		{`"score":"8.5"`, 8.5, true},
		{`"score": null`, 0, false},
		{`"id": "q1"`, 0, false},
	}
	for _, tt := range tests {
		got, ok := RescueNumber(tt.text, "score")
		if got != tt.want || ok != tt.ok {
			t.Errorf("RescueNumber(%q) = %v, %v; want %v, %v", tt.text, got, ok, tt.want, tt.ok)
		}
	}
}

func TestRescueStringList(t *testing.T) {
	got, ok := RescueStringList(`"strengths": ["clear structure", "uses \"STAR\""], "x": 1`, "strengths")
	if !ok {
		t.Fatal("expected list")
	}
	want := []string{"clear structure", `uses "STAR"`}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %q, want %q", got, want)
	}

	got, ok = RescueStringList(`"areas_to_improve": ["depth", "exam`, "areas_to_improve")
	if !ok || len(got) != 1 || got[0] != "depth" {
		t.Fatalf("truncated list: got %q, %v", got, ok)
	}

	if _, ok := RescueStringList(`"other": []`, "strengths"); ok {
		t.Fatal("expected no list")
	}
}

func TestObjects(t *testing.T) {
	text := `{"questionFeedback":[{"id":"q1","feedback":"uses {braces}"},{"id":"q2","score":3}],"overall":{"averageScore":3}`
	got := Objects(text)
	want := []string{
		`{"id":"q1","feedback":"uses {braces}"}`,
		`{"id":"q2","score":3}`,
		`{"averageScore":3}`,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Objects() = %q, want %q", got, want)
	}

	truncated := Objects(`[{"id":"q1","score":4},{"id":"q2","score":5,"feedback":"cut`)
	if len(truncated) != 2 || truncated[1] != `{"id":"q2","score":5,"feedback":"cut` {
		t.Fatalf("truncated Objects() = %q", truncated)
	}
}
