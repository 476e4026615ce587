package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/croxxed/mangamux/internal/source"
)

var homeCmd = &cobra.Command{
	Use:   "home",
	Short: "Show trending, popular and recently updated works",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}

		data, err := a.registry.Home(cmd.Context())
		if err != nil {
			return fmt.Errorf("fetch home data: %w", err)
		}

		printSection("Trending", data.Trending)
		printSection("Popular", data.Popular)
		printSection("Recently updated", data.Recent)
		return nil
	},
}

func printSection(heading string, items []source.Candidate) {
	fmt.Println(heading + ":")
	for _, c := range items {
		fmt.Printf("  %-40s %s\n", truncate(c.Title, 40), c.URL)
	}
	fmt.Println()
}

func init() {
	rootCmd.AddCommand(homeCmd)
}
