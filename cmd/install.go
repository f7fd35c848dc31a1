package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plyght/wax/pkg/installer"
	"github.com/plyght/wax/pkg/waxerr"
)

func newInstallCmd() *cobra.Command {
	var buildFromSource bool
	cmd := &cobra.Command{
		Use:   "install <name1> [name2...N]",
		Short: "Install one or more formulae and their dependencies",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}

			opts := installOptions()
			opts.BuildFromSource = buildFromSource

			report, err := orch.Install(context.Background(), args, opts)
			if err != nil {
				return err
			}
			printInstallReport(report)
			return nil
		},
	}
	cmd.Flags().BoolVar(&buildFromSource, "build-from-source", false, "build from source when no bottle is available (unsupported by this core)")
	return cmd
}

func printInstallReport(r *installer.Report) {
	fmt.Printf("Installing %v with %d dependencies\n", r.Roots, len(r.Order)-len(r.Roots))
	for _, name := range r.AlreadyInstalled {
		fmt.Printf("%s already installed\n", name)
	}
	if r.DryRun {
		fmt.Printf("Would install: %v\n", r.Order)
		return
	}
	for _, name := range r.Installed {
		fmt.Printf("installed %s\n", name)
	}
	for name, reason := range r.Skipped {
		fmt.Printf("%s: %s\n", name, reason)
	}
	for name, err := range r.Failures {
		fmt.Printf("%s: %s\n", name, waxerr.Render(err))
	}
	fmt.Printf("Done in %s\n", r.Elapsed)
}
