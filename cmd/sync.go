package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plyght/wax/pkg/waxerr"
)

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Replay wax.lock, installing anything missing or at the wrong version",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := orch.Sync(context.Background(), lockfileName, installOptions())
			if err != nil {
				return err
			}
			for _, name := range report.Installed {
				fmt.Printf("installed %s\n", name)
			}
			for name, reason := range report.Skipped {
				fmt.Printf("%s: %s\n", name, reason)
			}
			for name, ferr := range report.Failures {
				fmt.Printf("%s: %s\n", name, waxerr.Render(ferr))
			}
			return nil
		},
	}
}
