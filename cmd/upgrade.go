package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newUpgradeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upgrade <name>",
		Short: "Replace an installed formula with its current version",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return cmd.Help()
			}
			report, err := orch.Upgrade(context.Background(), args[0], installOptions())
			if err != nil {
				return err
			}
			if report.AlreadyLatest {
				fmt.Printf("%s %s is already up to date\n", report.Name, report.OldVersion)
				return nil
			}
			if flagDryRun {
				fmt.Printf("Would upgrade %s %s -> %s\n", report.Name, report.OldVersion, report.NewVersion)
				return nil
			}
			fmt.Printf("Upgraded %s %s -> %s\n", report.Name, report.OldVersion, report.NewVersion)
			return nil
		},
	}
	return cmd
}
