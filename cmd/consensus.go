package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/croxxed/mangamux/internal/consensus"
)

var (
	consensusURL      string
	consensusSources  int
	consensusQuick    bool
	consensusValidate int
)

var consensusCmd = &cobra.Command{
	Use:   "consensus <title>",
	Short: "Reconcile chapter counts across sources",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		title := args[0]

		if consensusQuick {
			fmt.Println(a.engine.QuickCount(ctx, title, consensusURL))
			return nil
		}

		if consensusValidate > 0 {
			v := a.engine.ValidateChapterCount(ctx, consensusValidate, title, consensusURL)
			fmt.Printf("reported=%d suggested=%d reasonable=%v confidence=%d%%\n",
				consensusValidate, v.SuggestedCount, v.IsReasonable, v.Confidence)
			return nil
		}

		res := a.engine.Consensus(ctx, title, consensusURL, consensusSources)
		fmt.Printf("latest chapter: %d (confidence %d%%)\n", res.Count, res.Confidence)
		for _, s := range res.Sources {
			fmt.Printf("  %-14s %4d  %s\n", s.SourceName, s.Count, s.URL)
		}
		return nil
	},
}

func init() {
	consensusCmd.Flags().StringVar(&consensusURL, "url", "", "known URL of the work")
	consensusCmd.Flags().IntVar(&consensusSources, "sources", consensus.DefaultMaxSources, "sources to sample")
	consensusCmd.Flags().BoolVar(&consensusQuick, "quick", false, "fast count-only mode")
	consensusCmd.Flags().IntVar(&consensusValidate, "validate", 0, "validate a reported chapter count")
	rootCmd.AddCommand(consensusCmd)
}
