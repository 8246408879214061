package interview

import (
	"errors"
	"fmt"

	"github.com/abhisek/rehearse/internal/feedback"
)

var (
	// ErrDraftNotFound is returned for unknown or expired drafts.
	ErrDraftNotFound = errors.New("interview draft not found")

	// ErrUnknownQuestion is returned when answering a question the draft
	// does not have.
	ErrUnknownQuestion = errors.New("unknown question")

	// ErrSubmitInProgress is returned when the draft is already being
	// submitted.
	ErrSubmitInProgress = errors.New("interview is already being submitted")
)

// UnansweredError blocks submission while answers are missing.
type UnansweredError struct {
	Count int
}

func (e *UnansweredError) Error() string {
	noun := "questions"
	if e.Count == 1 {
		noun = "question"
	}
	return fmt.Sprintf("Please answer all questions before submitting. You have %d unanswered %s.", e.Count, noun)
}

// ScoringError means the answers could not be scored. The draft is kept
// and submission may be retried.
type ScoringError struct {
	Message string
}

func (e *ScoringError) Error() string { return e.Message }

// Retryable is always true for scoring failures.
func (e *ScoringError) Retryable() bool { return true }

// PersistenceError means scoring succeeded but the session was not saved.
// The scores are carried so the caller can still show them.
type PersistenceError struct {
	Err        error
	Scores     map[string]feedback.ScoreEntry
	Overall    *feedback.OverallScore
	TotalScore float64
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("interview scored but not saved: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
