// SPDX-License-Identifier: MPL-2.0

package hookexec

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/invowk/precommit/internal/hook"
	"github.com/invowk/precommit/internal/language"
)

const (
	// StatusPassed means every batch exited zero.
	StatusPassed Status = "Passed"
	// StatusFailed means at least one batch exited non-zero.
	StatusFailed Status = "Failed"
	// StatusSkipped means there were no files and the hook is not always_run.
	StatusSkipped Status = "Skipped"
)

type (
	// Status is the result of running one hook.
	Status string

	// Outcome describes a finished hook run.
	Outcome struct {
		Status   Status
		ExitCode int
		// Output holds the combined output of all batches in batch order.
		Output   []byte
		Duration time.Duration
	}

	// Runner runs hooks through an installer.
	Runner struct {
		installer *language.Installer
		logger    *log.Logger
		reinstall bool
		now       func() time.Time
	}

	// Option configures a Runner.
	Option func(*Runner)
)

// WithLogger sets the runner logger.
func WithLogger(logger *log.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// WithReinstall discards and provisions environments again before running.
func WithReinstall(reinstall bool) Option {
	return func(r *Runner) { r.reinstall = reinstall }
}

// WithClock overrides the clock used to measure durations.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// NewRunner creates a runner over installer.
func NewRunner(installer *language.Installer, opts ...Option) *Runner {
	r := &Runner{
		installer: installer,
		logger:    log.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes h against files. Errors are returned unchanged so the caller
// can classify them.
func (r *Runner) Run(ctx context.Context, h *hook.Hook, files []string, color bool) (*Outcome, error) {
	if len(files) == 0 && !h.AlwaysRun() {
		r.logger.Debug("no files to check", "hook", h.ID())
		return &Outcome{Status: StatusSkipped}, nil
	}

	start := r.now()
	backend, _, err := r.ensure(ctx, h)
	if err != nil {
		return nil, err
	}

	fileArgs := files
	if !h.PassFilenames() {
		fileArgs = nil
	}

	r.logger.Debug("running hook", "hook", h.ID(), "language", h.Language(), "files", len(fileArgs))
	res, err := backend.RunHook(ctx, h, fileArgs, color)
	if err != nil {
		return nil, err
	}

	out := &Outcome{
		Status:   StatusPassed,
		ExitCode: res.ExitCode,
		Output:   res.Output,
		Duration: r.now().Sub(start),
	}
	if res.ExitCode != 0 {
		out.Status = StatusFailed
	}
	return out, nil
}

func (r *Runner) ensure(ctx context.Context, h *hook.Hook) (language.Backend, *language.Environment, error) {
	if r.reinstall {
		return r.installer.Reinstall(ctx, h)
	}
	return r.installer.Ensure(ctx, h)
}
