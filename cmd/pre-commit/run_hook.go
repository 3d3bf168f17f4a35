// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/invowk/precommit/internal/app/hookexec"
	"github.com/invowk/precommit/internal/config"
	"github.com/invowk/precommit/internal/hook"
	"github.com/invowk/precommit/internal/language"
	"github.com/invowk/precommit/internal/supervisor"
)

// runHookFlags holds the run-hook command-line values.
type runHookFlags struct {
	cfg       hook.Config
	color     string
	reinstall bool
}

func newRunHookCommand(app *App) *cobra.Command {
	var f runHookFlags

	cmd := &cobra.Command{
		Use:   "run-hook [flags] [FILE...]",
		Short: "Run one hook against files",
		Long: `Run one hook against the given files.

The hook's environment is installed on first use and reused afterwards.
The command exits with the hook's exit code when the hook fails.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, files []string) error {
			return app.runHook(cmd, f, files)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.cfg.ID, "id", "", "hook id (required)")
	flags.StringVar(&f.cfg.Name, "name", "", "hook name shown in output (default is the id)")
	flags.StringVar(&f.cfg.Entry, "entry", "", "command, script or pattern the hook runs (required)")
	flags.StringVar(&f.cfg.Language, "language", "", "hook language: docker, docker_image, pcre, script or system (required)")
	flags.StringVar(&f.cfg.LanguageVersion, "language-version", "", "language version (default \"default\")")
	flags.StringArrayVar(&f.cfg.AdditionalDependencies, "additional-dependency", nil, "extra dependency to install (repeatable)")
	flags.StringArrayVar(&f.cfg.Args, "arg", nil, "argument appended to the entry (repeatable)")
	flags.StringVar(&f.cfg.Prefix, "repo", ".", "hook repository directory")
	flags.BoolVar(&f.cfg.PassFilenames, "pass-filenames", true, "pass the files to the hook")
	flags.BoolVar(&f.cfg.AlwaysRun, "always-run", false, "run even when no files are given")
	flags.BoolVar(&f.cfg.RequireSerial, "require-serial", false, "run batches one at a time")
	flags.StringVar(&f.color, "color", "", "color output: auto, always or never (default from config)")
	flags.BoolVar(&f.reinstall, "reinstall", false, "discard and reinstall the hook environment")
	return cmd
}

func (a *App) runHook(cmd *cobra.Command, f runHookFlags, files []string) error {
	if f.color != "" {
		if err := config.ColorMode(f.color).Validate(); err != nil {
			return &usageError{err: err}
		}
	}
	h, err := hook.New(f.cfg)
	if err != nil {
		return &usageError{err: err}
	}

	ctx := cmd.Context()
	s, err := a.session(ctx)
	if err != nil {
		return err
	}

	engine, err := a.Engines(s.cfg.ContainerEngine, s.logger)
	if err != nil {
		return err
	}
	registry := language.BuildRegistry(language.RegistryOptions{
		Engine:      engine,
		Concurrency: s.cfg.EffectiveConcurrency(),
		Logger:      s.logger,
	})
	runner := hookexec.NewRunner(language.NewInstaller(registry, s.logger),
		hookexec.WithLogger(s.logger),
		hookexec.WithReinstall(f.reinstall),
	)

	color := a.color(s.cfg, f.color)
	out, err := runner.Run(ctx, h, files, color)
	if err != nil {
		return err
	}

	a.printOutcome(h, out, color)
	if out.Status == hookexec.StatusFailed {
		return supervisor.ExitCode(out.ExitCode)
	}
	return nil
}
