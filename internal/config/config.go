// Package config loads rehearse settings from .env, an optional YAML file
// and REHEARSE_* environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/abhisek/rehearse/internal/attention"
	"github.com/abhisek/rehearse/internal/interview"
	"github.com/abhisek/rehearse/internal/llm"
)

// Config is the full application configuration.
type Config struct {
	Log       LogConfig        `mapstructure:"log"`
	DB        DBConfig         `mapstructure:"db"`
	Server    ServerConfig     `mapstructure:"server"`
	Attention attention.Config `mapstructure:"attention"`
	Interview interview.Config `mapstructure:"interview"`
	Redis     RedisConfig      `mapstructure:"redis"`
	LLM       llm.Config       `mapstructure:"llm"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
	// File is where the TUI writes its log. Empty means beside the database.
	File string `mapstructure:"file"`
}

type DBConfig struct {
	// DSN is a SQLite path or a postgres:// URL. Empty means the default
	// data directory.
	DSN          string        `mapstructure:"dsn"`
	WakeAttempts int           `mapstructure:"wake_attempts"`
	WakeDelay    time.Duration `mapstructure:"wake_delay"`
}

type ServerConfig struct {
	Addr           string        `mapstructure:"addr"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`

	// WebSocket keepalive.
	PongWait     time.Duration `mapstructure:"pong_wait"`
	PingInterval time.Duration `mapstructure:"ping_interval"`
	WriteWait    time.Duration `mapstructure:"write_wait"`
}

// RedisConfig selects the Redis draft store. An empty Addr keeps drafts
// in memory.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Enabled reports whether drafts should live in Redis.
func (r RedisConfig) Enabled() bool { return r.Addr != "" }

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info", Format: "console"},
		DB:  DBConfig{WakeAttempts: 5, WakeDelay: 500 * time.Millisecond},
		Server: ServerConfig{
			Addr:           ":8080",
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   90 * time.Second,
			AllowedOrigins: []string{"*"},
			PongWait:       60 * time.Second,
			PingInterval:   54 * time.Second,
			WriteWait:      10 * time.Second,
		},
		Attention: attention.DefaultConfig(),
		Interview: interview.DefaultConfig(),
		LLM:       llm.DefaultConfig(),
	}
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	if c.Attention.SampleInterval <= 0 {
		return fmt.Errorf("attention.sample_interval must be positive")
	}
	if c.Attention.LookAwayThreshold < c.Attention.SampleInterval {
		return fmt.Errorf("attention.look_away_threshold (%s) must not be shorter than attention.sample_interval (%s)",
			c.Attention.LookAwayThreshold, c.Attention.SampleInterval)
	}
	if c.Attention.MaxWarnings < 1 {
		return fmt.Errorf("attention.max_warnings must be at least 1")
	}
	if c.Attention.ScoreThreshold < 0 || c.Attention.ScoreThreshold > 1 {
		return fmt.Errorf("attention.score_threshold must be within [0, 1]")
	}
	if c.Interview.QuestionCount < 1 {
		return fmt.Errorf("interview.question_count must be at least 1")
	}
	if c.Server.PingInterval >= c.Server.PongWait {
		return fmt.Errorf("server.ping_interval must be shorter than server.pong_wait")
	}
	return nil
}
