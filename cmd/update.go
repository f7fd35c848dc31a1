package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Refresh the formula and cask indices",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := metaClient.Update(context.Background())
			if err != nil {
				return err
			}
			if result.FormulaNotModified && result.CaskNotModified {
				fmt.Println("Already up-to-date.")
				return nil
			}
			fmt.Printf("Fetched %d formulae, %d casks.\n", result.FormulaCount, result.CaskCount)
			return nil
		},
	}
}
