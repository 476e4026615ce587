package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List registered providers",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}
		for _, info := range a.registry.List() {
			fmt.Printf("%-16s %s\n", info.Name, info.BaseURL)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}
