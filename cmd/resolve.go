package cmd

import (
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var (
	resolveURL  string
	resolvePick bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <title>",
	Short: "Find a work across all reading sources",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}

		candidates := a.resolver.Resolve(cmd.Context(), args[0], resolveURL, a.cfg.EnabledProviders)
		if len(candidates) == 0 {
			fmt.Println("not found on any source")
			return nil
		}

		if resolvePick {
			items := make([]string, len(candidates))
			for i, c := range candidates {
				items[i] = fmt.Sprintf("%s  [%s, score %d]", c.Title, c.ProviderName, c.RelevanceScore)
			}
			prompt := promptui.Select{
				Label: "Select source",
				Items: items,
				Size:  10,
			}
			idx, _, err := prompt.Run()
			if err != nil {
				return fmt.Errorf("selection cancelled")
			}
			fmt.Println(candidates[idx].URL)
			return nil
		}

		for _, c := range candidates {
			fmt.Printf("%3d  %-14s %-40s %s\n", c.RelevanceScore, c.ProviderName, truncate(c.Title, 40), c.URL)
		}
		return nil
	},
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

func init() {
	resolveCmd.Flags().StringVar(&resolveURL, "url", "", "known URL of the work (enables alternate-title lookup)")
	resolveCmd.Flags().BoolVar(&resolvePick, "pick", false, "interactively pick one source")
	rootCmd.AddCommand(resolveCmd)
}
