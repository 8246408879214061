package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/abhisek/rehearse/internal/feedback"
	"github.com/abhisek/rehearse/internal/interview"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score answers saved in a JSON file",
	Long: `Score a saved interview. The file holds a draft:

  {"jobRole": "...", "experienceLevel": "...", "industry": "...",
   "questions": [{"id": "q1", "question": "..."}],
   "answers": {"q1": "..."}}

With --save the scored interview is stored in the history.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		save, _ := cmd.Flags().GetBool("save")

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		var d interview.Draft
		if err := json.Unmarshal(data, &d); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		if len(d.Questions) == 0 {
			return fmt.Errorf("%s has no questions", path)
		}
		if d.Answers == nil {
			d.Answers = map[string]string{}
		}
		if d.ID == "" {
			d.ID = uuid.NewString()
		}
		if d.UserID == "" {
			d.UserID = interview.DefaultUserID
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

		if !save {
			return scoreAndPrint(ctx, feedback.NewNormalizer(provider, feedback.DefaultConfig(), e.logger), feedback.ScoreInput{
				JobRole:         d.JobRole,
				Questions:       d.Questions,
				Answers:         d.Answers,
				ExperienceLevel: d.ExperienceLevel,
				Industry:        d.Industry,
				Company:         d.Company,
			})
		}

		drafts := interview.NewMemoryDrafts(e.cfg.Interview.DraftTTL)
		if err := drafts.Save(ctx, &d); err != nil {
			return err
		}
		out, err := e.interviews(provider, drafts).Submit(ctx, d.ID)
		var persist *interview.PersistenceError
		if errors.As(err, &persist) {
			printScores(d.Questions, persist.Scores, persist.Overall)
			return err
		}
		if err != nil {
			return err
		}

		printScores(d.Questions, out.Scores, out.Overall)
		fmt.Printf("Saved as session %s (total %.1f)\n", out.SessionID, out.TotalScore)
		return nil
	},
}

func init() {
	scoreCmd.Flags().StringP("file", "f", "", "Draft JSON file (required)")
	scoreCmd.Flags().Bool("save", false, "Save the scored interview to history")
	_ = scoreCmd.MarkFlagRequired("file")
}
