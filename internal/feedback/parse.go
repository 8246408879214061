package feedback

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/abhisek/rehearse/internal/jsonextract"
	"github.com/abhisek/rehearse/internal/llm"
)

// ErrUnparseable is returned when no scored entry could be recovered from
// the model reply. It matches jsonextract.ErrUnparseable.
var ErrUnparseable = &jsonextract.ParseError{Message: "Failed to parse feedback response. Please try again."}

type wireEntry struct {
	ID             any      `json:"id"`
	Score          float64  `json:"score"`
	Feedback       string   `json:"feedback"`
	Strengths      []string `json:"strengths"`
	AreasToImprove []string `json:"areas_to_improve"`
}

type wireReply struct {
	QuestionFeedback []wireEntry   `json:"questionFeedback"`
	Overall          *OverallScore `json:"overall"`
}

// Parse recovers the per-question feedback from a raw model reply. A reply
// that fails strict decoding or schema validation is rescued item by item:
// every {...} carrying an "id" and a numeric "score" becomes an entry.
func Parse(text string) (*Reply, error) {
	r, ok := parseStrict(text)
	if !ok {
		r = rescue(text)
	}
	if r == nil {
		return nil, ErrUnparseable
	}
	r.Entries = dedupe(r.Entries)
	return r, nil
}

// Score bounds.
const (
	minScore = 1
	maxScore = 10
)

func clampScore(v float64) float64 {
	return math.Max(minScore, math.Min(maxScore, v))
}

// dedupe keeps one entry per id. The last entry for an id wins and takes
// the position of the first.
func dedupe(entries []Entry) []Entry {
	pos := make(map[string]int, len(entries))
	out := entries[:0:0]
	for _, e := range entries {
		if i, ok := pos[e.ID]; ok {
			out[i] = e
			continue
		}
		pos[e.ID] = len(out)
		out = append(out, e)
	}
	return out
}

func parseStrict(text string) (*Reply, bool) {
	var raw any
	candidate, err := jsonextract.Decode(text, jsonextract.ShapeObject, &raw)
	if err != nil {
		return nil, false
	}
	if err := llm.Validate(replySchema, raw); err != nil {
		return nil, false
	}

	var w wireReply
	if err := json.Unmarshal([]byte(candidate), &w); err != nil {
		return nil, false
	}
	if len(w.QuestionFeedback) == 0 {
		return nil, false
	}

	r := &Reply{Overall: w.Overall}
	for _, e := range w.QuestionFeedback {
		r.Entries = append(r.Entries, Entry{
			ID: idString(e.ID),
			ScoreEntry: ScoreEntry{
				Score:          clampScore(e.Score),
				Feedback:       e.Feedback,
				Strengths:      e.Strengths,
				AreasToImprove: e.AreasToImprove,
			},
		})
	}
	return r, true
}

func rescue(text string) *Reply {
	var r Reply
	for _, obj := range jsonextract.Objects(text) {
		id, ok := jsonextract.RescueString(obj, "id")
		if !ok {
			n, isNum := jsonextract.RescueNumber(obj, "id")
			if !isNum {
				continue
			}
			id = strconv.FormatFloat(n, 'f', -1, 64)
		}
		score, ok := jsonextract.RescueNumber(obj, "score")
		if !ok {
			continue
		}
		e := Entry{ID: id, ScoreEntry: ScoreEntry{Score: clampScore(score)}}
		e.Feedback, _ = jsonextract.RescueString(obj, "feedback")
		e.Strengths, _ = jsonextract.RescueStringList(obj, "strengths")
		e.AreasToImprove, _ = jsonextract.RescueStringList(obj, "areas_to_improve")
		r.Entries = append(r.Entries, e)
	}
	if len(r.Entries) == 0 {
		return nil
	}
	r.Overall = rescueOverall(text)
	return &r
}

func rescueOverall(text string) *OverallScore {
	var o OverallScore
	var found bool
	if s, ok := jsonextract.RescueString(text, "generalFeedback"); ok {
		o.GeneralFeedback, found = s, true
	}
	if l, ok := jsonextract.RescueStringList(text, "keyStrengths"); ok {
		o.KeyStrengths, found = l, true
	}
	if l, ok := jsonextract.RescueStringList(text, "developmentAreas"); ok {
		o.DevelopmentAreas, found = l, true
	}
	if s, ok := jsonextract.RescueString(text, "hiringRecommendation"); ok {
		o.HiringRecommendation, found = s, true
	}
	if !found {
		return nil
	}
	return &o
}

func idString(v any) string {
	switch id := v.(type) {
	case string:
		return strings.TrimSpace(id)
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	}
	return ""
}
