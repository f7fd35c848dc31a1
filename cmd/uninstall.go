package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUninstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "uninstall <name>",
		Short: "Remove an installed formula",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return cmd.Help()
			}
			report, err := orch.Uninstall(args[0], flagDryRun)
			if err != nil {
				return err
			}
			if len(report.Dependents) > 0 {
				fmt.Printf("warning: %s is required by %v\n", report.Name, report.Dependents)
			}
			if report.DryRun {
				fmt.Printf("Would uninstall %s %s\n", report.Name, report.Version)
				return nil
			}
			fmt.Printf("Uninstalled %s %s\n", report.Name, report.Version)
			return nil
		},
	}
	return cmd
}
