package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/rehearse/internal/feedback"
	"github.com/abhisek/rehearse/internal/questions"
)

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Generate interview questions for a role",
	Long: `Generate mock interview questions and print them.

With --practice the questions are asked one at a time on stdin and the
answers are scored at the end. Nothing is saved.`,
	RunE: runQuestions,
}

func init() {
	questionsCmd.Flags().String("role", "", "Job role (required)")
	questionsCmd.Flags().String("level", questions.DefaultLevel, "Experience level")
	questionsCmd.Flags().String("industry", questions.DefaultIndustry, "Industry")
	questionsCmd.Flags().String("company", "", "Target company (optional)")
	questionsCmd.Flags().Int("count", 0, "Number of questions (default from interview.question_count)")
	questionsCmd.Flags().Bool("practice", false, "Answer the questions and get feedback")
	_ = questionsCmd.MarkFlagRequired("role")
}

func runQuestions(cmd *cobra.Command, args []string) error {
	role, _ := cmd.Flags().GetString("role")
	level, _ := cmd.Flags().GetString("level")
	industry, _ := cmd.Flags().GetString("industry")
	company, _ := cmd.Flags().GetString("company")
	count, _ := cmd.Flags().GetInt("count")
	practice, _ := cmd.Flags().GetBool("practice")

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

	if count <= 0 {
		count = e.cfg.Interview.QuestionCount
	}
	req := questions.Request{JobRole: role, ExperienceLevel: level, Industry: industry, Company: company, Count: count}

	fmt.Printf("Role: %s (%s, %s)\n", role, level, industry)
	fmt.Printf("Generating %d questions...\n\n", count)

	gen := questions.NewGenerator(provider, questions.DefaultGeneratorConfig(), e.logger)
	qs, err := gen.Generate(ctx, req)
	if err != nil {
		return err
	}

	if !practice {
		for i, q := range qs {
			fmt.Printf("%d. [%s] %s\n", i+1, q.ID, q.Text)
		}
		return nil
	}

	answers := askAll(qs)
	return scoreAndPrint(ctx, feedback.NewNormalizer(provider, feedback.DefaultConfig(), e.logger), feedback.ScoreInput{
		JobRole:         role,
		Questions:       qs,
		Answers:         answers,
		ExperienceLevel: level,
		Industry:        industry,
		Company:         company,
	})
}

// askAll reads one line per question from stdin.
func askAll(qs []questions.Question) map[string]string {
	scanner := bufio.NewScanner(os.Stdin)
	answers := make(map[string]string, len(qs))

	for i, q := range qs {
		fmt.Printf("── Question %d/%d ──\n", i+1, len(qs))
		fmt.Println(q.Text)
		fmt.Print("\nYour answer: ")
		if !scanner.Scan() {
			fmt.Println("\n(input closed)")
			break
		}
		answers[q.ID] = strings.TrimSpace(scanner.Text())
		fmt.Println()
	}
	return answers
}

func scoreAndPrint(ctx context.Context, n *feedback.Normalizer, in feedback.ScoreInput) error {
	fmt.Println("Scoring answers...")
	res := n.Score(ctx, in)
	if !res.Success {
		return fmt.Errorf("scoring failed: %s", res.Error)
	}
	printScores(in.Questions, res.Scores, res.Overall)
	return nil
}

func printScores(qs []questions.Question, scores map[string]feedback.ScoreEntry, overall *feedback.OverallScore) {
	sep := strings.Repeat("─", 60)
	for i, q := range qs {
		fmt.Println(sep)
		fmt.Printf("Q%d. %s\n", i+1, q.Text)
		e, ok := scores[q.ID]
		if !ok {
			fmt.Println("   (no score)")
			continue
		}
		fmt.Printf("   Score: %.1f/10\n", e.Score)
		if e.Feedback != "" {
			fmt.Printf("   %s\n", e.Feedback)
		}
		if len(e.Strengths) > 0 {
			fmt.Printf("   Strengths: %s\n", strings.Join(e.Strengths, "; "))
		}
		if len(e.AreasToImprove) > 0 {
			fmt.Printf("   Improve:   %s\n", strings.Join(e.AreasToImprove, "; "))
		}
	}
	fmt.Println(sep)
	if overall == nil {
		return
	}
	fmt.Printf("Average: %.1f/10\n", overall.AverageScore)
	if overall.GeneralFeedback != "" {
		fmt.Println(overall.GeneralFeedback)
	}
	if overall.HiringRecommendation != "" {
		fmt.Printf("Recommendation: %s\n", overall.HiringRecommendation)
	}
}
