package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/abhisek/rehearse/internal/llm"
)

// EnvPrefix prefixes every environment override, e.g. REHEARSE_LOG_LEVEL.
const EnvPrefix = "REHEARSE"

// Options controls where Load looks.
type Options struct {
	// File is an explicit config file. When set it must exist.
	File string
	// EnvFiles are dotenv files loaded before anything else. Missing files
	// are skipped. Defaults to ".env".
	EnvFiles []string
	// SearchPaths are searched for rehearse.yaml when File is empty.
	SearchPaths []string
}

// Load resolves the configuration: dotenv files, then the YAML file, then
// REHEARSE_* variables over built-in defaults.
func Load(opts Options) (*Config, error) {
	if err := loadEnvFiles(opts.EnvFiles); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v, Default())
	// No default, so an unset provider can fall back to key discovery.
	_ = v.BindEnv("llm.provider")

	if opts.File != "" {
		v.SetConfigFile(opts.File)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", opts.File, err)
		}
	} else {
		v.SetConfigName("rehearse")
		v.SetConfigType("yaml")
		for _, p := range searchPaths(opts.SearchPaths) {
			v.AddConfigPath(p)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.LLM.FillKeysFromEnv()
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "huggingface"
		if found, ok := llm.DiscoverConfig(); ok {
			cfg.LLM.Provider = found.Provider
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadEnvFiles(files []string) error {
	if files == nil {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		// godotenv never overrides variables already in the environment.
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func searchPaths(extra []string) []string {
	if extra != nil {
		return extra
	}
	paths := []string{"."}
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		paths = append(paths, filepath.Join(dir, "rehearse"))
	} else if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "rehearse"))
	}
	return paths
}

// setDefaults registers every leaf key so AutomaticEnv can override it
// during Unmarshal.
func setDefaults(v *viper.Viper, d Config) {
	defaults := map[string]any{
		"log.level":  d.Log.Level,
		"log.format": d.Log.Format,
		"log.file":   d.Log.File,

		"db.dsn":           d.DB.DSN,
		"db.wake_attempts": d.DB.WakeAttempts,
		"db.wake_delay":    d.DB.WakeDelay,

		"server.addr":            d.Server.Addr,
		"server.read_timeout":    d.Server.ReadTimeout,
		"server.write_timeout":   d.Server.WriteTimeout,
		"server.allowed_origins": d.Server.AllowedOrigins,
		"server.pong_wait":       d.Server.PongWait,
		"server.ping_interval":   d.Server.PingInterval,
		"server.write_wait":      d.Server.WriteWait,

		"attention.look_away_threshold": d.Attention.LookAwayThreshold,
		"attention.sample_interval":     d.Attention.SampleInterval,
		"attention.max_warnings":        d.Attention.MaxWarnings,
		"attention.score_threshold":     d.Attention.ScoreThreshold,
		"attention.warning_display":     d.Attention.WarningDisplay,

		"interview.question_count": d.Interview.QuestionCount,
		"interview.draft_ttl":      d.Interview.DraftTTL,

		"redis.addr":     d.Redis.Addr,
		"redis.password": d.Redis.Password,
		"redis.db":       d.Redis.DB,

		"llm.huggingface.api_key":  d.LLM.HuggingFace.APIKey,
		"llm.huggingface.model":    d.LLM.HuggingFace.Model,
		"llm.huggingface.base_url": d.LLM.HuggingFace.BaseURL,
		"llm.anthropic.api_key":    d.LLM.Anthropic.APIKey,
		"llm.anthropic.model":      d.LLM.Anthropic.Model,
		"llm.anthropic.base_url":   d.LLM.Anthropic.BaseURL,
		"llm.openai.api_key":       d.LLM.OpenAI.APIKey,
		"llm.openai.model":         d.LLM.OpenAI.Model,
		"llm.openai.base_url":      d.LLM.OpenAI.BaseURL,
		"llm.gemini.api_key":       d.LLM.Gemini.APIKey,
		"llm.gemini.model":         d.LLM.Gemini.Model,
		"llm.openrouter.api_key":   d.LLM.OpenRouter.APIKey,
		"llm.openrouter.model":     d.LLM.OpenRouter.Model,
		"llm.openrouter.base_url":  d.LLM.OpenRouter.BaseURL,
		"llm.retry.max_attempts":   d.LLM.Retry.MaxAttempts,
		"llm.retry.initial_wait":   d.LLM.Retry.InitialWait,
		"llm.retry.max_wait":       d.LLM.Retry.MaxWait,
		"llm.retry.multiplier":     d.LLM.Retry.Multiplier,
		"llm.timeout":              d.LLM.Timeout,
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}
