package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/rehearse/internal/questions"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the job roles, experience levels and industries",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := questions.DefaultCatalog()

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(c)
		}

		section := func(title string, items []string) {
			fmt.Println(title)
			fmt.Println(strings.Repeat("─", 40))
			for _, it := range items {
				fmt.Printf("  %s\n", it)
			}
			fmt.Println()
		}
		section("Job roles", c.Roles)
		section("Experience levels", c.Levels)
		section("Industries", c.Industries)
		return nil
	},
}

func init() {
	catalogCmd.Flags().Bool("json", false, "Print as JSON")
}
