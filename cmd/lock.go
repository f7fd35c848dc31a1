package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plyght/wax/pkg/lockfile"
)

const lockfileName = "wax.lock"

func newLockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lock",
		Short: "Write wax.lock pinning the installed set to exact versions",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := lockfile.Generate(formulaStore)
			if err != nil {
				return err
			}
			if err := lockfile.Save(f, lockfileName); err != nil {
				return err
			}
			fmt.Printf("Wrote %s with %d packages\n", lockfileName, len(f.Packages))
			return nil
		},
	}
}
