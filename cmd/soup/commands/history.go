package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history [dir]",
		Short: "List the files tracked by the build history",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := c.app.History(cmd.Context(), projectOptions(cmd, args))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				_, _ = fmt.Fprintln(out, "no build history")
				return nil
			}
			for _, r := range records {
				_, _ = fmt.Fprintln(out, r.Path)
				for _, dep := range r.DiscoveredDependencies {
					_, _ = fmt.Fprintf(out, "  <- %s\n", dep)
				}
			}
			return nil
		},
	}
}
