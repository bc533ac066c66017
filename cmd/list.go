package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/exascience/parpat"
	_ "github.com/exascience/parpat/tasks"
)

// NewListCommand returns the command that prints the names of all
// registered tasks.
func NewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range parpat.Names() {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
