package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/abhisek/rehearse/internal/feedback"
	"github.com/abhisek/rehearse/internal/interview"
	"github.com/abhisek/rehearse/internal/questions"
	"github.com/abhisek/rehearse/internal/store"
)

func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]any{"success": false, "error": msg})
}

// Health returns health status.
func (s *Server) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": s.version,
	})
}

// Wake pings the database with retries, for hosts that suspend idle
// databases.
func (s *Server) Wake(c echo.Context) error {
	if err := store.Wake(c.Request().Context(), s.db, s.wake.WakeAttempts, s.wake.WakeDelay, s.logger); err != nil {
		s.logger.Error("database wake failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]any{
			"success": false,
			"message": "Error while trying to wake database",
		})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Database connection established",
	})
}

func (s *Server) Catalog(c echo.Context) error {
	return c.JSON(http.StatusOK, s.catalog)
}

type answerRequest struct {
	Answer string `json:"answer"`
}

func (s *Server) StartInterview(c echo.Context) error {
	var in interview.StartInput
	if err := c.Bind(&in); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}

	d, err := s.interviews.Start(c.Request().Context(), in)
	switch {
	case errors.Is(err, questions.ErrEmptyRole):
		return fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, questions.ErrUnparseable):
		return fail(c, http.StatusBadGateway, questions.ErrUnparseable.Error())
	case err != nil:
		s.logger.Error("start interview failed", zap.Error(err))
		return fail(c, http.StatusBadGateway, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "draft": d})
}

func (s *Server) GetInterview(c echo.Context) error {
	d, err := s.interviews.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return s.draftError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "draft": d})
}

func (s *Server) AnswerQuestion(c echo.Context) error {
	var req answerRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}

	d, err := s.interviews.Answer(c.Request().Context(), c.Param("id"), c.Param("qid"), req.Answer)
	if err != nil {
		return s.draftError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "draft": d})
}

func (s *Server) SubmitInterview(c echo.Context) error {
	out, err := s.interviews.Submit(c.Request().Context(), c.Param("id"))

	var (
		unanswered *interview.UnansweredError
		scoring    *interview.ScoringError
		persist    *interview.PersistenceError
	)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, map[string]any{
			"success":    true,
			"sessionId":  out.SessionID,
			"scores":     out.Scores,
			"overall":    out.Overall,
			"totalScore": out.TotalScore,
		})
	case errors.As(err, &unanswered):
		return fail(c, http.StatusBadRequest, unanswered.Error())
	case errors.As(err, &scoring):
		return c.JSON(http.StatusBadGateway, map[string]any{
			"success":   false,
			"error":     scoring.Error(),
			"retryable": scoring.Retryable(),
		})
	case errors.As(err, &persist):
		return c.JSON(http.StatusInternalServerError, map[string]any{
			"success":    false,
			"error":      "Your answers were scored but could not be saved.",
			"saved":      false,
			"scores":     persist.Scores,
			"overall":    persist.Overall,
			"totalScore": persist.TotalScore,
		})
	default:
		return s.draftError(c, err)
	}
}

func (s *Server) AbandonInterview(c echo.Context) error {
	reason := c.QueryParam("reason")
	if reason == "" {
		reason = "abandoned"
	}
	if err := s.interviews.Abandon(c.Request().Context(), c.Param("id"), reason); err != nil {
		return s.draftError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true})
}

func (s *Server) draftError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, interview.ErrDraftNotFound):
		return fail(c, http.StatusNotFound, "Interview not found or expired")
	case errors.Is(err, interview.ErrUnknownQuestion):
		return fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, interview.ErrSubmitInProgress):
		return fail(c, http.StatusConflict, "Your answers are already being scored.")
	}
	s.logger.Error("interview request failed", zap.Error(err))
	return fail(c, http.StatusInternalServerError, err.Error())
}

type sessionSummaryView struct {
	ID            string    `json:"id"`
	JobRole       string    `json:"jobRole"`
	TotalScore    float64   `json:"totalScore"`
	CreatedAt     time.Time `json:"createdAt"`
	QuestionCount int       `json:"questionCount"`
}

type responseView struct {
	QuestionID     string   `json:"questionId"`
	Question       string   `json:"question"`
	Answer         string   `json:"answer"`
	Score          *float64 `json:"score"`
	Feedback       *string  `json:"feedback"`
	Strengths      []string `json:"strengths"`
	AreasToImprove []string `json:"areasToImprove"`
}

type sessionView struct {
	ID              string                 `json:"id"`
	UserID          string                 `json:"userId"`
	JobRole         string                 `json:"jobRole"`
	ExperienceLevel string                 `json:"experienceLevel"`
	Industry        string                 `json:"industry"`
	Company         string                 `json:"company,omitempty"`
	TotalScore      float64                `json:"totalScore"`
	Overall         *feedback.OverallScore `json:"overall,omitempty"`
	CreatedAt       time.Time              `json:"createdAt"`
	Responses       []responseView         `json:"responses"`
}

func (s *Server) ListSessions(c echo.Context) error {
	userID := strings.TrimSpace(c.QueryParam("userId"))
	if userID == "" {
		return fail(c, http.StatusBadRequest, "User ID is required")
	}

	list, err := s.sessions.ListSessions(c.Request().Context(), userID)
	if err != nil {
		s.logger.Error("list sessions failed", zap.Error(err))
		return fail(c, http.StatusInternalServerError, err.Error())
	}

	out := make([]sessionSummaryView, 0, len(list))
	for _, ss := range list {
		out = append(out, sessionSummaryView(ss))
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "sessions": out})
}

func (s *Server) GetSession(c echo.Context) error {
	sess, err := s.sessions.GetSession(c.Request().Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		return fail(c, http.StatusNotFound, "Interview session not found")
	}
	if err != nil {
		s.logger.Error("get session failed", zap.Error(err))
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "session": newSessionView(sess, s.logger)})
}

func (s *Server) DeleteSession(c echo.Context) error {
	err := s.sessions.DeleteSession(c.Request().Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		return fail(c, http.StatusNotFound, "Interview session not found")
	}
	if err != nil {
		s.logger.Error("delete session failed", zap.Error(err))
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Interview session deleted successfully",
	})
}

func newSessionView(sess *store.Session, logger *zap.Logger) sessionView {
	v := sessionView{
		ID:              sess.ID,
		UserID:          sess.UserID,
		JobRole:         sess.JobRole,
		ExperienceLevel: sess.ExperienceLevel,
		Industry:        sess.Industry,
		Company:         sess.Company,
		TotalScore:      sess.TotalScore,
		CreatedAt:       sess.CreatedAt,
		Responses:       make([]responseView, 0, len(sess.Responses)),
	}
	if len(sess.Overall) > 0 {
		o, err := feedback.DecodeOverall(sess.Overall)
		if err != nil {
			logger.Warn("stored overall assessment unreadable", zap.String("session_id", sess.ID), zap.Error(err))
		} else {
			v.Overall = o
		}
	}
	for _, r := range sess.Responses {
		v.Responses = append(v.Responses, responseView{
			QuestionID:     r.QuestionID,
			Question:       r.Question,
			Answer:         r.Answer,
			Score:          r.Score,
			Feedback:       r.Feedback,
			Strengths:      r.Strengths,
			AreasToImprove: r.AreasToImprove,
		})
	}
	return v
}
