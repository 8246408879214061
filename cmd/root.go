package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rehearse",
	Short: "Mock interview practice with AI feedback",
	Long: `Rehearse generates interview questions for a role, scores your answers
with an AI model, and keeps an eye on whether you stay focused while you answer.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "SQLite path or postgres:// URL (overrides REHEARSE_DB_DSN)")
	rootCmd.PersistentFlags().String("config", "", "Path to a config file (default: rehearse.yaml in . or $XDG_CONFIG_HOME/rehearse)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(questionsCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(wakeCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}
