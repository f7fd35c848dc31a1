package cmd

import (
	"fmt"

	"github.com/plyght/wax/pkg/platform"
	"github.com/plyght/wax/pkg/waxerr"
	"github.com/spf13/cobra"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <name>",
		Short: "Show metadata for one formula",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return cmd.Help()
			}
			name := args[0]

			formulae, err := metaClient.LoadFormulae()
			if err != nil {
				return err
			}
			for _, f := range formulae {
				if f.Name != name && f.QualifiedName() != name {
					continue
				}
				fmt.Printf("%s: %s\n", f.Name, f.Description)
				fmt.Printf("Homepage: %s\n", f.Homepage)
				fmt.Printf("Version: %s\n", f.Version)
				if len(f.RuntimeDeps) > 0 {
					fmt.Printf("Depends on: %v\n", f.RuntimeDeps)
				}
				tag, tagErr := platform.Detect()
				if tagErr == nil {
					if f.BottledFor(tag) {
						fmt.Printf("Bottled for %s: yes\n", tag)
					} else {
						fmt.Printf("Bottled for %s: no\n", tag)
					}
				}
				return nil
			}

			casks, err := metaClient.LoadCasks()
			if err != nil {
				return err
			}
			for _, c := range casks {
				if c.Token != name && c.FullToken != name {
					continue
				}
				fmt.Printf("%s: %s\n", c.Token, c.Description)
				fmt.Printf("Homepage: %s\n", c.Homepage)
				fmt.Printf("Version: %s\n", c.Version)
				return nil
			}

			return waxerr.ErrFormulaNotFound.New("%q not found as formula or cask", name)
		},
	}
}
