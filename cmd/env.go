package cmd

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/rehearse/internal/config"
	"github.com/abhisek/rehearse/internal/feedback"
	"github.com/abhisek/rehearse/internal/interview"
	"github.com/abhisek/rehearse/internal/llm"
	"github.com/abhisek/rehearse/internal/logger"
	"github.com/abhisek/rehearse/internal/questions"
	"github.com/abhisek/rehearse/internal/store"
)

// loadConfig resolves configuration and applies the persistent flags on
// top of it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	file, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(config.Options{File: file})
	if err != nil {
		return nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	if dsn, _ := cmd.Flags().GetString("db"); dsn != "" {
		cfg.DB.DSN = dsn
	}
	return cfg, nil
}

// resolveDSN returns the configured DSN or the default data path.
func resolveDSN(cfg *config.Config) (string, error) {
	if cfg.DB.DSN != "" {
		if err := store.EnsureDir(cfg.DB.DSN); err != nil {
			return "", err
		}
		return cfg.DB.DSN, nil
	}
	return store.DefaultDBPath()
}

// env bundles what most commands need. Close releases it.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *store.Store
}

func openEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	l, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	dsn, err := resolveDSN(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &env{cfg: cfg, logger: l, store: st}, nil
}

func (e *env) Close() {
	e.store.Close()
	_ = e.logger.Sync()
}

// provider builds the configured text generation provider with request
// logging into the store.
func (e *env) provider(ctx context.Context) (llm.Provider, error) {
	if err := e.cfg.LLM.Validate(); err != nil {
		return nil, err
	}
	return llm.NewProvider(ctx, e.cfg.LLM, e.store.EventRepo(), e.logger)
}

// drafts returns the Redis draft store when configured, otherwise an
// in-memory one.
func (e *env) drafts(ctx context.Context) (interview.DraftStore, func(), error) {
	ttl := e.cfg.Interview.DraftTTL
	if !e.cfg.Redis.Enabled() {
		return interview.NewMemoryDrafts(ttl), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     e.cfg.Redis.Addr,
		Password: e.cfg.Redis.Password,
		DB:       e.cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("connect to redis at %s: %w", e.cfg.Redis.Addr, err)
	}
	e.logger.Info("using redis for interview drafts", zap.String("addr", e.cfg.Redis.Addr))
	return interview.NewRedisDrafts(client, ttl), func() { client.Close() }, nil
}

// interviews wires the rehearsal workflow around provider.
func (e *env) interviews(provider llm.Provider, drafts interview.DraftStore) *interview.Service {
	return interview.NewService(
		questions.NewGenerator(provider, questions.DefaultGeneratorConfig(), e.logger),
		feedback.NewNormalizer(provider, feedback.DefaultConfig(), e.logger),
		e.store.Sessions(),
		drafts,
		e.logger,
		e.cfg.Interview,
	)
}
