package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/rehearse/internal/feedback"
	"github.com/abhisek/rehearse/internal/interview"
	"github.com/abhisek/rehearse/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse saved interview sessions",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved sessions, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		list, err := e.store.Sessions().ListSessions(cmd.Context(), user)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("No interview sessions yet.")
			return nil
		}

		fmt.Printf("%-36s  %-19s  %-28s  %5s  %s\n", "ID", "Date", "Role", "Score", "Questions")
		fmt.Println(strings.Repeat("─", 100))
		for _, s := range list {
			fmt.Printf("%-36s  %-19s  %-28s  %5.1f  %d\n",
				s.ID,
				s.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				truncate(s.JobRole, 28),
				s.TotalScore,
				s.QuestionCount,
			)
		}
		return nil
	},
}

var historyViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show a session with its answers and feedback",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		s, err := e.store.Sessions().GetSession(cmd.Context(), args[0])
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("Interview session not found: %s", args[0])
		}
		if err != nil {
			return err
		}

		fmt.Printf("Role:      %s\n", s.JobRole)
		fmt.Printf("Level:     %s\n", s.ExperienceLevel)
		fmt.Printf("Industry:  %s\n", s.Industry)
		if s.Company != "" {
			fmt.Printf("Company:   %s\n", s.Company)
		}
		fmt.Printf("Date:      %s\n", s.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("Score:     %.1f/10\n", s.TotalScore)

		for i, r := range s.Responses {
			fmt.Println(strings.Repeat("─", 60))
			fmt.Printf("Q%d. %s\n", i+1, r.Question)
			fmt.Printf("   Answer: %s\n", r.Answer)
			if r.Score != nil {
				fmt.Printf("   Score:  %.1f/10\n", *r.Score)
			}
			if r.Feedback != nil && *r.Feedback != "" {
				fmt.Printf("   %s\n", *r.Feedback)
			}
		}

		if len(s.Overall) > 0 {
			if o, err := feedback.DecodeOverall(s.Overall); err == nil && o.GeneralFeedback != "" {
				fmt.Println(strings.Repeat("─", 60))
				fmt.Println(o.GeneralFeedback)
			}
		}
		return nil
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		err = e.store.Sessions().DeleteSession(cmd.Context(), args[0])
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("Interview session not found: %s", args[0])
		}
		if err != nil {
			return err
		}
		fmt.Println("Interview session deleted successfully")
		return nil
	},
}

func init() {
	historyListCmd.Flags().String("user", interview.DefaultUserID, "User ID")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyViewCmd)
	historyCmd.AddCommand(historyDeleteCmd)
}
