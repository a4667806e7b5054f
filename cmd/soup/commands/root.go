// Package commands implements the CLI commands for the soup build tool.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/soup/internal/app"
	"go.trai.ch/soup/internal/build"
	"go.trai.ch/soup/internal/core/domain"
	"go.trai.ch/soup/internal/engine/runner"
	"go.trai.ch/zerr"
)

// CLI represents the command line interface for soup.
type CLI struct {
	app      Application
	log      LogSettings
	progress ProgressDisplay
	rootCmd  *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Build(ctx context.Context, opts app.BuildOptions) (runner.Result, error)
	Clean(ctx context.Context, opts app.ProjectOptions) error
	History(ctx context.Context, opts app.ProjectOptions) ([]domain.FileRecord, error)
}

// LogSettings is implemented by loggers whose output can be tuned from flags.
type LogSettings interface {
	SetLevel(level domain.LogLevel)
	SetJSON(enable bool)
}

// ProgressDisplay draws build progress while fn runs.
type ProgressDisplay interface {
	Run(ctx context.Context, fn func(context.Context) error) error
}

// New creates a new CLI instance with the given app. log may be nil, in which
// case --verbosity and --json have no effect. progress may be nil, in which
// case build --progress fails.
func New(a Application, log LogSettings, progress ProgressDisplay) *CLI {
	rootCmd := &cobra.Command{
		Use:           "soup",
		Short:         "An incremental build engine driven by extension-generated graphs",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	flags := rootCmd.PersistentFlags()
	flags.StringP("configuration", "c", "", "Build configuration, such as debug or release")
	flags.String("obj-dir", "", "Object directory holding the build state")
	flags.String("verbosity", "normal", "Log verbosity: quiet, normal, detailed or diagnostic")
	flags.Bool("json", false, "Write logs as JSON")

	c := &CLI{
		app:      a,
		log:      log,
		progress: progress,
		rootCmd:  rootCmd,
	}
	rootCmd.PersistentPreRunE = c.configureLogger

	rootCmd.AddCommand(c.newBuildCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newHistoryCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

func (c *CLI) configureLogger(cmd *cobra.Command, _ []string) error {
	verbosity, _ := cmd.Flags().GetString("verbosity")
	level, ok := domain.ParseVerbosity(verbosity)
	if !ok {
		return zerr.With(zerr.New("unknown verbosity"), "verbosity", verbosity)
	}
	if c.log == nil {
		return nil
	}
	jsonMode, _ := cmd.Flags().GetBool("json")
	c.log.SetLevel(level)
	c.log.SetJSON(jsonMode)
	return nil
}

// projectOptions reads the flags shared by every project command.
func projectOptions(cmd *cobra.Command, args []string) app.ProjectOptions {
	opts := app.ProjectOptions{}
	if len(args) > 0 {
		opts.Dir = args[0]
	}
	opts.Configuration, _ = cmd.Flags().GetString("configuration")
	opts.ObjectDirectory, _ = cmd.Flags().GetString("obj-dir")
	return opts
}
