package feedback

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Override thresholds, in runes of the raw answer.
const (
	placeholderLen       = 30
	fillerLen            = 50
	shortLen             = 80
	trustCeiling         = 4
	placeholderCap       = 2
	shortCap             = 3
	veryShortLen         = 15
	genericStrength      = "attempted to answer"
	briefFeedbackPrefix  = "The answer is too brief and lacks necessary detail. "
	veryShortFeedback    = "Please provide a complete answer that addresses the question."
	shortFeedback        = "To improve, you should provide specific examples and elaborate on your experience and approach."
	superlativeReplaceBy = "incomplete"
)

var fillerPhrases = []string{"know this answer", "i know", "i know this", "ok", "okay", "yes", "no"}

var briefAreas = []string{
	"Provide much more detail and specific examples",
	"Elaborate on your technical approach and methods used",
	"Include information about challenges faced and how you overcame them",
}

var superlatives = regexp.MustCompile(`(?i)(clear and detailed|comprehensive|excellent|well-articulated|well-structured|thorough)`)

// Correction reasons.
const (
	ReasonPlaceholder = "placeholder"
	ReasonShortHigh   = "short_high_score"
	ReasonFabrication = "fabrication"
	ReasonSuperlative = "superlative"
)

// Correction records one rewrite applied to a reply.
type Correction struct {
	QuestionID string
	Reason     string
	AnswerLen  int
	RawScore   float64
}

// IsPlaceholder reports whether answer is too short, or is a short filler
// phrase, to be a real answer.
func IsPlaceholder(answer string) bool {
	n := utf8.RuneCountInString(answer)
	if n < placeholderLen {
		return true
	}
	if n >= fillerLen {
		return false
	}
	lower := strings.ToLower(answer)
	for _, p := range fillerPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// ApplyPolicy collapses repeated ids, rewrites implausible entries of r in
// place, then recomputes the overall average. answers maps question id to the raw answer; an
// entry whose id has no answer is judged against the empty string.
func ApplyPolicy(r *Reply, answers map[string]string) []Correction {
	r.Entries = dedupe(r.Entries)
	var out []Correction
	overridden := false

	for i := range r.Entries {
		e := &r.Entries[i]
		answer := answers[e.ID]
		n := utf8.RuneCountInString(answer)
		placeholder := IsPlaceholder(answer)

		if placeholder || (n < shortLen && e.Score > trustCeiling) {
			reason := ReasonShortHigh
			if placeholder {
				reason = ReasonPlaceholder
			}
			out = append(out, Correction{QuestionID: e.ID, Reason: reason, AnswerLen: n, RawScore: e.Score})
			overrideEntry(&e.ScoreEntry, placeholder, n)
			overridden = true
		}

		if text, changed := rewriteFabrications(e.Feedback, answer); changed {
			e.Feedback = text
			out = append(out, Correction{QuestionID: e.ID, Reason: ReasonFabrication, AnswerLen: n, RawScore: e.Score})
		}
	}

	if len(r.Entries) == 0 {
		return out
	}
	if r.Overall == nil {
		r.Overall = &OverallScore{}
	}

	all := make([]string, 0, len(answers))
	for _, a := range answers {
		all = append(all, a)
	}
	joined := strings.Join(all, "\n")
	if text, changed := rewriteFabrications(r.Overall.GeneralFeedback, joined); changed {
		r.Overall.GeneralFeedback = text
		out = append(out, Correction{Reason: ReasonFabrication})
	}

	if overridden && neutralizeOverall(r.Overall) {
		out = append(out, Correction{Reason: ReasonSuperlative})
	}

	r.Overall.AverageScore = averageOf(r.Entries)
	return out
}

func overrideEntry(e *ScoreEntry, placeholder bool, n int) {
	limit := float64(shortCap)
	if placeholder {
		limit = placeholderCap
	}
	e.Score = math.Min(e.Score, limit)

	if len(e.Strengths) > 0 {
		e.Strengths = []string{genericStrength}
	}

	if n < veryShortLen {
		e.Feedback = briefFeedbackPrefix + veryShortFeedback
	} else {
		e.Feedback = briefFeedbackPrefix + shortFeedback
	}

	e.AreasToImprove = append([]string(nil), briefAreas...)
}

// neutralizeOverall rewrites praise in the overall summary once any answer
// has been judged too brief.
func neutralizeOverall(o *OverallScore) bool {
	changed := false
	if s := superlatives.ReplaceAllString(o.GeneralFeedback, superlativeReplaceBy); s != o.GeneralFeedback {
		o.GeneralFeedback = s
		changed = true
	}
	for i, k := range o.KeyStrengths {
		if s := superlatives.ReplaceAllString(k, superlativeReplaceBy); s != k {
			o.KeyStrengths[i] = s
			changed = true
		}
	}
	return changed
}

func averageOf(entries []Entry) float64 {
	if len(entries) == 0 {
		return 0
	}
	var sum float64
	for _, e := range entries {
		sum += e.Score
	}
	return Round1(sum / float64(len(entries)))
}

// Round1 rounds x to one decimal place, halves away from zero.
func Round1(x float64) float64 {
	return math.Round(x*10) / 10
}
