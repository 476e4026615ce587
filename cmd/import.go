package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/croxxed/mangamux/internal/follows"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a follow list (.csv or MyAnimeList .xml)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}

		works, err := follows.ParseFile(args[0])
		if err != nil {
			return fmt.Errorf("parse follow list: %w", err)
		}

		for _, w := range works {
			if err := a.store.AddFollow(w); err != nil {
				return fmt.Errorf("store follow %q: %w", w.Title, err)
			}
		}
		fmt.Printf("imported %d follows\n", len(works))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
