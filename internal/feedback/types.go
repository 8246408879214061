// Package feedback scores interview answers with a text generation model
// and corrects the scores the model is not trusted to give.
package feedback

import (
	"encoding/json"
	"fmt"

	"github.com/abhisek/rehearse/internal/questions"
)

// ScoreEntry is the feedback for one answered question.
type ScoreEntry struct {
	Score          float64  `json:"score"`
	Feedback       string   `json:"feedback"`
	Strengths      []string `json:"strengths"`
	AreasToImprove []string `json:"areas_to_improve"`
}

// OverallScore summarizes the whole interview. AverageScore is always
// recomputed from the per-question scores.
type OverallScore struct {
	AverageScore         float64  `json:"averageScore"`
	GeneralFeedback      string   `json:"generalFeedback,omitempty"`
	KeyStrengths         []string `json:"keyStrengths,omitempty"`
	DevelopmentAreas     []string `json:"developmentAreas,omitempty"`
	HiringRecommendation string   `json:"hiringRecommendation,omitempty"`
}

// ScoreInput is everything the model sees about an interview.
type ScoreInput struct {
	JobRole         string
	Questions       []questions.Question
	Answers         map[string]string
	ExperienceLevel string
	Industry        string
	Company         string
}

// Result is the outcome of scoring. Exactly one of Scores or Error is set.
type Result struct {
	Success bool                  `json:"success"`
	Scores  map[string]ScoreEntry `json:"scores,omitempty"`
	Overall *OverallScore         `json:"overall,omitempty"`
	Error   string                `json:"error,omitempty"`
}

// Entry is one questionFeedback item of a parsed reply, in reply order.
type Entry struct {
	ID string
	ScoreEntry
}

// Reply is a parsed model reply before policy is applied.
type Reply struct {
	Entries []Entry
	Overall *OverallScore
}

// DecodeOverall reads an OverallScore stored as JSON.
func DecodeOverall(data []byte) (*OverallScore, error) {
	var o OverallScore
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("decode overall assessment: %w", err)
	}
	return &o, nil
}
