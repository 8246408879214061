package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/rehearse/internal/app"
	"github.com/abhisek/rehearse/internal/interview"
	"github.com/abhisek/rehearse/internal/logger"
	"github.com/abhisek/rehearse/internal/questions"
	"github.com/abhisek/rehearse/internal/store"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	// The terminal belongs to the UI, so logs go to a file.
	path := tuiLogPath(e.cfg.Log.File, e.cfg.DB.DSN)
	fl, err := logger.NewFile(e.cfg.Log.Level, path)
	if err != nil {
		return fmt.Errorf("open log file %s: %w", path, err)
	}
	e.logger = fl

	opts := app.Options{
		Sessions:  e.store.Sessions(),
		Catalog:   questions.DefaultCatalog(),
		Attention: e.cfg.Attention,
		UserID:    interview.DefaultUserID,
		Logger:    e.logger,

		GenerateTimeout: e.cfg.LLM.Timeout * time.Duration(max(e.cfg.LLM.Retry.MaxAttempts, 1)),
	}

	provider, err := e.provider(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
		fmt.Fprintln(os.Stderr, "Rehearsals are unavailable; history still works.")
	} else {
		drafts, closeDrafts, err := e.drafts(ctx)
		if err != nil {
			return err
		}
		defer closeDrafts()
		opts.Interviews = e.interviews(provider, drafts)
	}

	e.logger.Info("starting terminal ui", zap.String("log", path))
	return app.Run(opts)
}

// tuiLogPath picks the configured log file, else rehearse.log next to a
// sqlite database, else one in the temp directory.
func tuiLogPath(configured, dsn string) string {
	if configured != "" {
		return configured
	}
	if dsn == "" {
		if p, err := store.DefaultDBPath(); err == nil {
			return filepath.Join(filepath.Dir(p), "rehearse.log")
		}
	} else if !strings.Contains(dsn, "://") && !strings.HasPrefix(dsn, "file:") {
		return filepath.Join(filepath.Dir(dsn), "rehearse.log")
	}
	return filepath.Join(os.TempDir(), "rehearse.log")
}
