// Package server exposes the rehearsal workflow over HTTP and streams
// attention monitoring over a WebSocket.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/abhisek/rehearse/internal/analysis"
	"github.com/abhisek/rehearse/internal/attention"
	"github.com/abhisek/rehearse/internal/config"
	"github.com/abhisek/rehearse/internal/interview"
	"github.com/abhisek/rehearse/internal/metrics"
	"github.com/abhisek/rehearse/internal/questions"
	"github.com/abhisek/rehearse/internal/store"
)

// Deps are the collaborators the handlers call.
type Deps struct {
	Interviews *interview.Service
	// Analysis is optional; the /api/answers routes are only served when
	// it is set.
	Analysis *analysis.Analyzer
	Sessions store.SessionRepo
	DB       store.Pinger
	Catalog  questions.Catalog
	Logger   *zap.Logger
	Version  string
}

// Server owns the echo instance and its routes.
type Server struct {
	echo       *echo.Echo
	interviews *interview.Service
	analysis   *analysis.Analyzer
	sessions   store.SessionRepo
	db         store.Pinger
	catalog    questions.Catalog
	logger     *zap.Logger
	version    string

	http      config.ServerConfig
	wake      config.DBConfig
	attention attention.Config
	upgrader  websocket.Upgrader
}

// New builds a server with routes and middleware registered.
func New(cfg *config.Config, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		echo:       echo.New(),
		interviews: deps.Interviews,
		analysis:   deps.Analysis,
		sessions:   deps.Sessions,
		db:         deps.DB,
		catalog:    deps.Catalog,
		logger:     logger,
		version:    deps.Version,
		http:       cfg.Server,
		wake:       cfg.DB,
		attention:  cfg.Attention,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}

	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: cfg.Server.AllowedOrigins}))
	e.Use(s.requestLogger())

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	e := s.echo
	e.GET("/health", s.Health)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	e.GET("/ws/attention", s.Attention)

	api := e.Group("/api")
	api.GET("/wake", s.Wake)
	api.GET("/catalog", s.Catalog)

	api.POST("/interviews", s.StartInterview)
	api.GET("/interviews/:id", s.GetInterview)
	api.PUT("/interviews/:id/answers/:qid", s.AnswerQuestion)
	api.POST("/interviews/:id/submit", s.SubmitInterview)
	api.DELETE("/interviews/:id", s.AbandonInterview)

	if s.analysis != nil {
		api.POST("/answers/grammar", s.CorrectGrammar)
		api.POST("/answers/sentiment", s.ClassifySentiment)
		api.POST("/answers/feedback", s.CommentOnAnswer)
	}

	api.GET("/sessions", s.ListSessions)
	api.GET("/sessions/:id", s.GetSession)
	api.DELETE("/sessions/:id", s.DeleteSession)
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.echo }

// Start serves on addr until Shutdown. http.ErrServerClosed is not an
// error.
func (s *Server) Start(addr string) error {
	s.logger.Info("api listening", zap.String("addr", addr))
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, o := range s.http.AllowedOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

// requestLogger logs one line per request and feeds the HTTP metrics.
func (s *Server) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogRoutePath: true,
		LogStatus:    true,
		LogLatency:   true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			route := v.RoutePath
			if route == "" {
				route = "unmatched"
			}
			metrics.HTTPRequests.WithLabelValues(v.Method, route, strconv.Itoa(v.Status)).Inc()
			metrics.HTTPDuration.WithLabelValues(v.Method, route).Observe(v.Latency.Seconds())

			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency.Round(time.Microsecond)),
			}
			if v.Error != nil {
				s.logger.Warn("request failed", append(fields, zap.Error(v.Error))...)
				return nil
			}
			s.logger.Debug("request", fields...)
			return nil
		},
	})
}
