// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/invowk/precommit/internal/supervisor"
)

// exitUsage is the exit code for command-line misuse.
const exitUsage = 2

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
)

// NewRootCommand builds the command tree for app.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "pre-commit",
		Short: "Run hooks in managed environments",
		Long: TitleStyle.Render("pre-commit") + SubtitleStyle.Render(" - run hooks in managed environments") + `

pre-commit runs a hook's command over a list of files, splitting the list
into batches that fit the platform's command-line limit. Container hooks
build their image from the hook repository and run each batch in a
throwaway container with the working directory mounted at /src.

` + SubtitleStyle.Render("Examples:") + `
  pre-commit run-hook --id tabs --language pcre --entry '\t' main.go
  pre-commit run-hook --id lint --language docker --repo ./hooks/lint src/*.js
  pre-commit clean`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().StringVar(&app.configFile, "config", "", "config file (default is $XDG_CONFIG_HOME/pre-commit/config.cue)")
	root.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable debug logging")
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	root.AddCommand(newRunHookCommand(app))
	root.AddCommand(newCleanCommand(app))
	return root
}

// versionString returns a formatted version string for display.
func versionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}

// Execute runs the CLI under the failure supervisor and exits. It is called
// by main.main.
func Execute() {
	app := NewApp(Dependencies{})
	sup := supervisor.New(Version, supervisor.WithStore(app.Store))
	os.Exit(sup.Run(context.Background(), func(ctx context.Context) error {
		return app.Execute(ctx, os.Args[1:])
	}))
}

// Execute runs the command tree with args. Usage errors are reported by the
// CLI itself and become exit code 2; every other error is returned for the
// supervisor to classify.
func (a *App) Execute(ctx context.Context, args []string) error {
	root := NewRootCommand(a)
	root.SetArgs(args)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	err := fang.Execute(ctx, root,
		fang.WithVersion(versionString()),
		fang.WithErrorHandler(a.handleError),
	)
	var ue *usageError
	if errors.As(err, &ue) {
		return supervisor.ExitCode(exitUsage)
	}
	return err
}
