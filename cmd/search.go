package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plyght/wax/pkg/metadata"
)

func newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Ranked search over cached formula and cask names and descriptions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return cmd.Help()
			}
			query := args[0]

			formulae, err := metaClient.LoadFormulae()
			if err != nil {
				return err
			}
			casks, err := metaClient.LoadCasks()
			if err != nil {
				return err
			}

			installedFormulae, err := formulaStore.Load()
			if err != nil {
				return err
			}
			installedCasks, err := caskStore.Load()
			if err != nil {
				return err
			}
			installedFormulaNames := make(map[string]struct{}, len(installedFormulae))
			for name := range installedFormulae {
				installedFormulaNames[name] = struct{}{}
			}
			installedCaskNames := make(map[string]struct{}, len(installedCasks))
			for name := range installedCasks {
				installedCaskNames[name] = struct{}{}
			}

			results := metadata.Search(formulae, casks, query, installedFormulaNames, installedCaskNames)
			if len(results) == 0 {
				fmt.Printf("no results for %q\n", query)
				return nil
			}

			for _, r := range results {
				caskSuffix := ""
				if r.IsCask {
					caskSuffix = " (cask)"
				}
				installedSuffix := ""
				if r.Installed {
					installedSuffix = " · installed"
				}
				fmt.Printf("%s%s · %s%s\n", r.Name, caskSuffix, r.Version, installedSuffix)
				if r.Description != "" {
					fmt.Printf("  %s\n", r.Description)
				}
			}
			return nil
		},
	}
}
