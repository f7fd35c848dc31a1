package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newOutdatedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "outdated",
		Short: "List installed packages with a newer version available",
		RunE: func(cmd *cobra.Command, args []string) error {
			outdated, err := orch.Outdated(caskStore)
			if err != nil {
				return err
			}
			if len(outdated) == 0 {
				fmt.Println("all packages are up to date")
				return nil
			}
			for _, pkg := range outdated {
				caskSuffix := ""
				if pkg.IsCask {
					caskSuffix = " (cask)"
				}
				fmt.Printf("%s%s %s -> %s\n", pkg.Name, caskSuffix, pkg.InstalledVersion, pkg.LatestVersion)
			}
			return nil
		},
	}
}
