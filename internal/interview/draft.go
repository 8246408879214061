package interview

import (
	"context"
	"strings"
	"time"

	"github.com/abhisek/rehearse/internal/questions"
)

// Draft is a rehearsal between question generation and submission.
type Draft struct {
	ID              string               `json:"id"`
	UserID          string               `json:"userId"`
	JobRole         string               `json:"jobRole"`
	ExperienceLevel string               `json:"experienceLevel"`
	Industry        string               `json:"industry"`
	Company         string               `json:"company"`
	Questions       []questions.Question `json:"questions"`
	Answers         map[string]string    `json:"answers"`
	CreatedAt       time.Time            `json:"createdAt"`
}

// Unanswered counts questions with a missing or blank answer.
func (d *Draft) Unanswered() int {
	n := 0
	for _, q := range d.Questions {
		if strings.TrimSpace(d.Answers[q.ID]) == "" {
			n++
		}
	}
	return n
}

// HasQuestion reports whether id is one of the draft's questions.
func (d *Draft) HasQuestion(id string) bool {
	for _, q := range d.Questions {
		if q.ID == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (d *Draft) Clone() *Draft {
	c := *d
	c.Questions = append([]questions.Question(nil), d.Questions...)
	c.Answers = make(map[string]string, len(d.Answers))
	for k, v := range d.Answers {
		c.Answers[k] = v
	}
	return &c
}

// DraftStore keeps drafts between requests. Implementations expire drafts
// after a TTL.
type DraftStore interface {
	Save(ctx context.Context, d *Draft) error
	// Get returns ErrDraftNotFound for unknown or expired ids.
	Get(ctx context.Context, id string) (*Draft, error)
	// Delete is a no-op for unknown ids.
	Delete(ctx context.Context, id string) error
	// Update loads a draft, applies fn and saves the result as one atomic
	// step. An error from fn aborts the write.
	Update(ctx context.Context, id string, fn func(*Draft) error) (*Draft, error)
	// Claim marks a draft as being submitted until release is called or
	// SubmitClaimTTL passes. A second claim fails with ErrSubmitInProgress.
	Claim(ctx context.Context, id string) (release func(), err error)
}

const (
	// DefaultDraftTTL is how long an idle draft is kept.
	DefaultDraftTTL = 2 * time.Hour

	// SubmitClaimTTL bounds a submission claim left behind by a crash.
	SubmitClaimTTL = 5 * time.Minute
)
