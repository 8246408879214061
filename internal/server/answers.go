package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/abhisek/rehearse/internal/analysis"
)

type textRequest struct {
	Text string `json:"text"`
}

func (s *Server) CorrectGrammar(c echo.Context) error {
	var in textRequest
	if err := c.Bind(&in); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	out, err := s.analysis.Correct(c.Request().Context(), in.Text)
	if err != nil {
		return s.analysisError(c, err, "Correction failed")
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "corrected_text": out})
}

func (s *Server) ClassifySentiment(c echo.Context) error {
	var in textRequest
	if err := c.Bind(&in); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	labels, err := s.analysis.Sentiment(c.Request().Context(), in.Text)
	if err != nil {
		return s.analysisError(c, err, "Analysis failed")
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "labels": labels})
}

func (s *Server) CommentOnAnswer(c echo.Context) error {
	var in textRequest
	if err := c.Bind(&in); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	out, err := s.analysis.Comment(c.Request().Context(), in.Text)
	if err != nil {
		return s.analysisError(c, err, "Feedback generation failed")
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "feedback": out})
}

func (s *Server) analysisError(c echo.Context, err error, msg string) error {
	switch {
	case errors.Is(err, analysis.ErrEmptyText):
		return fail(c, http.StatusBadRequest, "Text required")
	case errors.Is(err, analysis.ErrTextTooLong):
		return fail(c, http.StatusRequestEntityTooLarge, "Text too long")
	}
	s.logger.Warn("answer analysis failed", zap.String("route", c.Path()), zap.Error(err))
	return fail(c, http.StatusInternalServerError, msg)
}
