package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/rehearse/internal/store"
)

var wakeCmd = &cobra.Command{
	Use:   "wake",
	Short: "Ping the database until it answers",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := store.Wake(cmd.Context(), e.store, e.cfg.DB.WakeAttempts, e.cfg.DB.WakeDelay, e.logger); err != nil {
			fmt.Println("Error while trying to wake database")
			return err
		}
		fmt.Println("Database connection established")
		return nil
	},
}
