package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	var cask bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List installed packages",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := formulaStore
			if cask {
				store = caskStore
			}
			installed, err := store.List()
			if err != nil {
				return err
			}
			if len(installed) == 0 {
				fmt.Println("Nothing installed.")
				return nil
			}
			for _, pkg := range installed {
				fmt.Printf("%s %s (%s)\n", pkg.Name, pkg.Version, pkg.Mode)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&cask, "cask", false, "list installed casks instead of formulae")
	return cmd
}
