// SPDX-License-Identifier: MPL-2.0

package xargs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"
	pkgerrors "github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"mvdan.cc/sh/v3/syntax"

	"github.com/invowk/precommit/internal/issue"
)

// ErrExecutableNotFound is the sentinel for ExecutableNotFoundError.
var ErrExecutableNotFound = errors.New("executable not found")

type (
	// Result is the aggregate of every batch run for one invocation.
	Result struct {
		// ExitCode is the maximum of the (possibly negated) batch exit codes.
		ExitCode int
		// Output is the combined stdout/stderr of every batch, in batch order.
		Output []byte
	}

	// ExecutableNotFoundError reports that the command's entry point could not be resolved.
	ExecutableNotFoundError struct {
		Name string
	}

	// Option configures Run.
	Option func(*runner)

	runner struct {
		negate      bool
		color       bool
		concurrency int
		maxLength   int
		env         []string
		dir         string
		logger      *log.Logger
		lookPath    func(string) (string, error)
	}

	batchResult struct {
		code   int
		output []byte
	}
)

func (e *ExecutableNotFoundError) Error() string {
	return fmt.Sprintf("Executable `%s` not found", e.Name)
}

func (e *ExecutableNotFoundError) Unwrap() error { return ErrExecutableNotFound }

// WithNegate inverts each batch's exit code: zero becomes 1, anything else 0.
func WithNegate(negate bool) Option {
	return func(r *runner) { r.negate = negate }
}

// WithColor runs each batch on a pseudo-terminal where supported.
func WithColor(color bool) Option {
	return func(r *runner) { r.color = color }
}

// WithConcurrency sets how many batches may run at once. Values below 1 mean 1.
func WithConcurrency(n int) Option {
	return func(r *runner) { r.concurrency = max(n, 1) }
}

// WithMaxLength overrides the platform command-length ceiling.
func WithMaxLength(n int) Option {
	return func(r *runner) { r.maxLength = n }
}

// WithEnv sets the environment of every batch subprocess.
func WithEnv(env []string) Option {
	return func(r *runner) { r.env = env }
}

// WithDir sets the working directory of every batch subprocess.
func WithDir(dir string) Option {
	return func(r *runner) { r.dir = dir }
}

// WithLogger sets the logger used for batch tracing.
func WithLogger(logger *log.Logger) Option {
	return func(r *runner) { r.logger = logger }
}

// Run executes cmd once per batch of fileArgs and aggregates the results.
//
// A hook tool failing is data: it is reported through Result.ExitCode. Errors
// are returned only when a batch cannot be run at all. A missing entry point is
// a fatal error; cancellation of ctx stops new batches from starting and yields
// an issue.InterruptedError once running batches finish on their own.
func Run(ctx context.Context, cmd, fileArgs []string, opts ...Option) (*Result, error) {
	if len(cmd) == 0 {
		return nil, pkgerrors.New("xargs: empty command")
	}

	r := &runner{
		concurrency: 1,
		logger:      log.Default(),
		lookPath:    exec.LookPath,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.maxLength <= 0 {
		r.maxLength = DefaultMaxLength()
	}

	exe, err := r.lookPath(cmd[0])
	if err != nil {
		return nil, issue.NewFatalError(&ExecutableNotFoundError{Name: cmd[0]}).WithIssue(issue.ExecutableNotFoundId)
	}
	argv := append([]string{exe}, cmd[1:]...)

	batches, err := Partition(argv, fileArgs, r.concurrency, r.maxLength)
	if err != nil {
		return nil, pkgerrors.WithStack(err)
	}

	results := make([]batchResult, len(batches))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, batch := range batches {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			batchArgv := append(argv[:len(argv):len(argv)], batch...)
			r.logger.Debug("running batch", "index", i, "of", len(batches), "files", len(batch), "cmd", FormatCommand(batchArgv))
			code, out, err := r.runBatch(batchArgv)
			if err != nil {
				return err
			}
			results[i] = batchResult{code: code, output: out}
			return nil
		})
	}
	waitErr := g.Wait()
	if ctx.Err() != nil {
		return nil, issue.NewInterruptedError(nil, context.Cause(ctx))
	}
	if waitErr != nil {
		return nil, waitErr
	}

	return aggregate(results, r.negate), nil
}

// FormatCommand renders argv as a bash command line that reproduces it,
// quoting words where needed.
func FormatCommand(argv []string) string {
	words := make([]string, len(argv))
	for i, arg := range argv {
		q, err := syntax.Quote(arg, syntax.LangBash)
		if err != nil {
			q = fmt.Sprintf("%q", arg)
		}
		words[i] = q
	}
	return strings.Join(words, " ")
}

func aggregate(results []batchResult, negate bool) *Result {
	var (
		res Result
		buf bytes.Buffer
	)
	for _, br := range results {
		code := br.code
		if negate {
			code = negateCode(code)
		}
		res.ExitCode = max(res.ExitCode, code)
		buf.Write(br.output)
	}
	res.Output = buf.Bytes()
	return &res
}

func negateCode(code int) int {
	if code == 0 {
		return 1
	}
	return 0
}

// runBatch runs one subprocess. Batches are never killed on cancellation, so
// the command is not bound to a context.
func (r *runner) runBatch(argv []string) (int, []byte, error) {
	//nolint:gosec,noctx // argv is the hook's own command line
	c := exec.Command(argv[0], argv[1:]...)
	c.Env = r.env
	c.Dir = r.dir

	execute := runPlain
	if r.color {
		execute = runColor
	}

	out, err := execute(c)
	if err == nil {
		return 0, out, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitStatus(exitErr), out, nil
	}
	return 0, out, pkgerrors.Wrapf(err, "run %s", argv[0])
}

func runPlain(c *exec.Cmd) ([]byte, error) {
	var buf bytes.Buffer
	c.Stdout = &buf
	c.Stderr = &buf
	err := c.Run()
	return buf.Bytes(), err
}
