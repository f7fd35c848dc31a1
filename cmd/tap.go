package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tap add|remove|list <name>",
		Short: "Manage known taps (cloning and parsing is a separate subsystem)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			switch args[0] {
			case "list":
				names, err := tapRegistry.List()
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Println(name)
				}
				return nil
			case "add":
				if len(args) != 2 {
					return cmd.Help()
				}
				return tapRegistry.Add(args[1])
			case "remove":
				if len(args) != 2 {
					return cmd.Help()
				}
				return tapRegistry.Remove(args[1])
			case "update":
				fmt.Println("tap update requires the external tap-cloning subsystem; nothing to do")
				return nil
			default:
				return cmd.Help()
			}
		},
	}
	return cmd
}
