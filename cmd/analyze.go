package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/rehearse/internal/analysis"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Check a single answer: grammar, sentiment or a short comment",
}

// analyzeRun builds a subcommand body. The answer comes from the
// arguments, or from stdin when there are none.
func analyzeRun(run func(ctx context.Context, a *analysis.Analyzer, text string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		if text == "" {
			data, err := io.ReadAll(io.LimitReader(os.Stdin, 4*analysis.MaxTextLen+1))
			if err != nil {
				return err
			}
			text = string(data)
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		provider, err := e.provider(ctx)
		if err != nil {
			return fmt.Errorf("LLM provider: %w", err)
		}
		return run(ctx, analysis.New(provider, analysis.DefaultConfig(), e.logger), text)
	}
}

var analyzeGrammarCmd = &cobra.Command{
	Use:   "grammar [answer]",
	Short: "Print the answer with grammar and spelling corrected",
	RunE: analyzeRun(func(ctx context.Context, a *analysis.Analyzer, text string) error {
		out, err := a.Correct(ctx, text)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	}),
}

var analyzeSentimentCmd = &cobra.Command{
	Use:   "sentiment [answer]",
	Short: "Classify the tone of the answer",
	RunE: analyzeRun(func(ctx context.Context, a *analysis.Analyzer, text string) error {
		labels, err := a.Sentiment(ctx, text)
		if err != nil {
			return err
		}
		for _, l := range labels {
			fmt.Printf("  %-9s %5.1f%%  %s\n", l.Label, l.Score*100, strings.Repeat("█", int(l.Score*20+0.5)))
		}
		return nil
	}),
}

var analyzeCommentCmd = &cobra.Command{
	Use:   "comment [answer]",
	Short: "Print short coaching feedback on the answer",
	RunE: analyzeRun(func(ctx context.Context, a *analysis.Analyzer, text string) error {
		out, err := a.Comment(ctx, text)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	}),
}

func init() {
	analyzeCmd.AddCommand(analyzeGrammarCmd)
	analyzeCmd.AddCommand(analyzeSentimentCmd)
	analyzeCmd.AddCommand(analyzeCommentCmd)
}
