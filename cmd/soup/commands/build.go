package commands

import (
	"context"

	"github.com/spf13/cobra"
	"go.trai.ch/soup/internal/app"
	"go.trai.ch/soup/internal/core/domain"
	"go.trai.ch/zerr"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [dir]",
		Short: "Build the project, running only out-of-date steps",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			graphFile, _ := cmd.Flags().GetString("graph")
			jobs, _ := cmd.Flags().GetInt("jobs")
			timeout, _ := cmd.Flags().GetDuration("timeout")
			progress, _ := cmd.Flags().GetBool("progress")

			opts := app.BuildOptions{
				ProjectOptions: projectOptions(cmd, args),
				GraphFile:      graphFile,
				Parallelism:    jobs,
				Timeout:        timeout,
				Force:          force,
			}
			build := func(ctx context.Context) error {
				_, err := c.app.Build(ctx, opts)
				return err
			}

			if !progress {
				return build(cmd.Context())
			}
			if c.progress == nil {
				return zerr.New("progress display is not available")
			}
			// Only warnings and errors are logged while the display is drawn.
			if c.log != nil && !cmd.Flags().Changed("verbosity") {
				c.log.SetLevel(domain.LogLevelWarn)
			}
			return c.progress.Run(cmd.Context(), build)
		},
	}
	cmd.Flags().BoolP("force", "f", false, "Run every step, ignoring the build history")
	cmd.Flags().StringP("graph", "g", "", "Graph descriptor to build")
	cmd.Flags().IntP("jobs", "j", 0, "Number of steps to run at once")
	cmd.Flags().Duration("timeout", 0, "Time limit for each step, such as 5m")
	cmd.Flags().Bool("progress", false, "Show live step progress in the terminal")
	return cmd
}
