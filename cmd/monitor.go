package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/rehearse/internal/attention"
	"github.com/abhisek/rehearse/internal/logger"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Replay a presence timeline through the attention monitor",
	Long: `Replay a presence timeline through the attention monitor in real time and
print what it reports.

The script is a comma separated list of presence:millis items, for example
"1:2000,0:2100,1:500,0:4200" (present 2s, away 2.1s, back, away 4.2s).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		script, _ := cmd.Flags().GetString("script")
		tail, _ := cmd.Flags().GetDuration("tail")
		failModels, _ := cmd.Flags().GetBool("fail-models")
		denyCamera, _ := cmd.Flags().GetBool("deny-camera")

		segs, err := attention.ParseScript(script)
		if err != nil {
			return err
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		l, err := logger.New(cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return err
		}
		defer l.Sync()

		src := attention.NewScript(attention.RealClock{}, segs)
		if failModels {
			src.ModelsErr = errors.New("model files missing")
		}
		if denyCamera {
			src.CameraErr = errors.New("NotAllowedError")
		}

		mon := attention.NewMonitor(cfg.Attention, src, src, attention.WithLogger(l))
		ctx, cancel := context.WithTimeout(cmd.Context(), src.Duration()+tail)
		defer cancel()

		start := time.Now()
		errc := make(chan error, 1)
		go func() { errc <- mon.Run(ctx) }()

		for sig := range mon.Signals() {
			elapsed := time.Since(start).Round(time.Millisecond)
			switch sig.Kind {
			case attention.SignalState:
				fmt.Printf("%8s  state       %s (warnings %d/%d)\n", elapsed, sig.State, sig.Warnings, sig.Max)
			case attention.SignalReady:
				fmt.Printf("%8s  ready\n", elapsed)
			case attention.SignalWarning:
				fmt.Printf("%8s  warning     %d/%d\n", elapsed, sig.Warnings, sig.Max)
			case attention.SignalTerminated:
				fmt.Printf("%8s  terminated  %s\n", elapsed, attention.TerminatedMessage)
			case attention.SignalFailed:
				fmt.Printf("%8s  failed      %v\n", elapsed, sig.Err)
			}
		}

		err = <-errc
		if errors.Is(err, attention.ErrTerminated) {
			return nil
		}
		return err
	},
}

func init() {
	monitorCmd.Flags().String("script", "1:2000,0:2100,1:1000,0:4200", "Presence timeline")
	monitorCmd.Flags().Duration("tail", 500*time.Millisecond, "Keep monitoring this long after the script ends")
	monitorCmd.Flags().Bool("fail-models", false, "Simulate a model loading failure")
	monitorCmd.Flags().Bool("deny-camera", false, "Simulate a denied camera permission")
}
