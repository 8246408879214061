package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/rehearse/internal/analysis"
	"github.com/abhisek/rehearse/internal/questions"
	"github.com/abhisek/rehearse/internal/server"
	"github.com/abhisek/rehearse/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and WebSocket API",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			e.cfg.Server.Addr = addr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := store.Wake(ctx, e.store, e.cfg.DB.WakeAttempts, e.cfg.DB.WakeDelay, e.logger); err != nil {
			return err
		}

		provider, err := e.provider(ctx)
		if err != nil {
			return fmt.Errorf("LLM provider: %w", err)
		}
		drafts, closeDrafts, err := e.drafts(ctx)
		if err != nil {
			return err
		}
		defer closeDrafts()

		srv := server.New(e.cfg, server.Deps{
			Interviews: e.interviews(provider, drafts),
			Analysis:   analysis.New(provider, analysis.DefaultConfig(), e.logger),
			Sessions:   e.store.Sessions(),
			DB:         e.store,
			Catalog:    questions.DefaultCatalog(),
			Logger:     e.logger,
			Version:    version,
		})

		errc := make(chan error, 1)
		go func() { errc <- srv.Start(e.cfg.Server.Addr) }()

		select {
		case err := <-errc:
			return err
		case <-ctx.Done():
		}

		e.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			e.logger.Warn("graceful shutdown failed", zap.Error(err))
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}
