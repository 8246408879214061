package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // sequence > After
	Before  int64     // sequence < Before
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	Purpose string    // exact purpose match
}

// NewSession is a scored rehearsal ready to be persisted.
type NewSession struct {
	UserID          string
	JobRole         string
	ExperienceLevel string
	Industry        string
	Company         string
	TotalScore      float64
	// Overall is the overall assessment as JSON. Optional.
	Overall   []byte
	CreatedAt time.Time // zero means now
	Responses []NewResponse
}

// NewResponse is one answered question of a NewSession.
type NewResponse struct {
	QuestionID     string
	Question       string
	Answer         string
	Score          *float64
	Feedback       *string
	Strengths      []string
	AreasToImprove []string
}

// SessionSummary is a row of the history list.
type SessionSummary struct {
	ID            string
	JobRole       string
	TotalScore    float64
	CreatedAt     time.Time
	QuestionCount int
}

// Session is a stored rehearsal with its responses.
type Session struct {
	ID              string
	UserID          string
	JobRole         string
	ExperienceLevel string
	Industry        string
	Company         string
	TotalScore      float64
	Overall         []byte
	CreatedAt       time.Time
	Responses       []QuestionResponse
}

// QuestionResponse is a stored answer with its feedback.
type QuestionResponse struct {
	ID             string
	SessionID      string
	QuestionID     string
	Position       int
	Question       string
	Answer         string
	Score          *float64
	Feedback       *string
	Strengths      []string
	AreasToImprove []string
}

// SessionRepo persists submitted rehearsals.
type SessionRepo interface {
	// CreateSession stores the session and all responses atomically.
	CreateSession(ctx context.Context, in NewSession) (string, error)

	// ListSessions returns a user's sessions, newest first.
	ListSessions(ctx context.Context, userID string) ([]SessionSummary, error)

	// GetSession returns ErrNotFound when id is unknown.
	GetSession(ctx context.Context, id string) (*Session, error)

	// DeleteSession removes a session and its responses.
	DeleteSession(ctx context.Context, id string) error
}

// LLMRequestEventData captures the data for a single generation request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored request event.
type LLMEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsageStat aggregates usage for one purpose.
type LLMUsageStat struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int
}

// LLMModelUsage aggregates usage for one model.
type LLMModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append access to domain events.
type EventRepo interface {
	// AppendLLMRequest records a text generation call.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
}
