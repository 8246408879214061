package feedback

import "testing"

func TestRewriteFabrications(t *testing.T) {
	tests := []struct {
		name     string
		feedback string
		answer   string
		want     string
		changed  bool
	}{
		{
			name:     "unmentioned tool rewritten",
			feedback: "You mentioned Tableau for the dashboards.",
			answer:   "I built dashboards for the sales team.",
			want:     "You should consider using appropriate visualization tools like Tableau for the dashboards.",
			changed:  true,
		},
		{
			name:     "case insensitive verb",
			feedback: "Candidate Leveraged Kafka to decouple services.",
			answer:   "We decoupled services with a queue.",
			want:     "Candidate should consider using appropriate messaging systems like Kafka to decouple services.",
			changed:  true,
		},
		{
			name:     "tool present in answer kept",
			feedback: "You used React effectively.",
			answer:   "I rebuilt the UI in react with hooks.",
			want:     "You used React effectively.",
		},
		{
			name:     "word boundary respected",
			feedback: "You discussed Reactive streams.",
			answer:   "Backpressure matters.",
			want:     "You discussed Reactive streams.",
		},
		{
			name:     "bare mention without claim kept",
			feedback: "Consider Docker for local parity.",
			answer:   "I run everything on my laptop.",
			want:     "Consider Docker for local parity.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := rewriteFabrications(tt.feedback, tt.answer)
			if got != tt.want || changed != tt.changed {
				t.Errorf("rewriteFabrications() = %q, %v, want %q, %v", got, changed, tt.want, tt.changed)
			}
		})
	}
}

func TestApplyPolicy_FabricationOnUnoverriddenEntry(t *testing.T) {
	answer := "I tuned slow queries by adding composite indexes and caching frequent lookups in memory for the catalog."
	r := &Reply{Entries: []Entry{{ID: "q1", ScoreEntry: ScoreEntry{Score: 8, Feedback: "You leveraged Redis well."}}}}

	got := ApplyPolicy(r, map[string]string{"q1": answer})

	if r.Entries[0].Score != 8 {
		t.Errorf("score = %v, want 8", r.Entries[0].Score)
	}
	if r.Entries[0].Feedback != "You should consider using appropriate caching layers like Redis well." {
		t.Errorf("feedback = %q", r.Entries[0].Feedback)
	}
	if len(got) != 1 || got[0].Reason != ReasonFabrication {
		t.Errorf("corrections = %+v", got)
	}
}
