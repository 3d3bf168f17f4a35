// SPDX-License-Identifier: MPL-2.0

package supervisor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/invowk/precommit/internal/issue"
	"github.com/invowk/precommit/internal/store"
)

type (
	// Supervisor runs one unit of work and handles whatever escapes it.
	Supervisor struct {
		version    string
		stdout     io.Writer
		exit       func(int)
		store      func() (*store.Store, error)
		logger     *log.Logger
		signals    []os.Signal
		executable func() (string, error)
	}

	// Option configures a Supervisor.
	Option func(*Supervisor)

	// ExitCodeError asks the supervisor to exit with Code without writing a
	// diagnostic. Hook failures use it to pass the hook's exit code through.
	ExitCodeError struct {
		Code int
	}

	// PanicError is a recovered panic.
	PanicError struct {
		Value any
		Stack []byte
	}

	// signalCause cancels the work context when a signal arrives.
	signalCause struct {
		sig os.Signal
	}
)

// WithStdout sets where the summary line and fallback record are written.
func WithStdout(w io.Writer) Option {
	return func(s *Supervisor) { s.stdout = w }
}

// WithExit replaces os.Exit.
func WithExit(exit func(int)) Option {
	return func(s *Supervisor) { s.exit = exit }
}

// WithStore sets how the store holding the log is resolved. It is called
// only when a diagnostic is written.
func WithStore(resolve func() (*store.Store, error)) Option {
	return func(s *Supervisor) { s.store = resolve }
}

// WithLogger sets the supervisor logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Supervisor) { s.logger = logger }
}

// WithSignals sets the signals treated as user interruption.
func WithSignals(sigs ...os.Signal) Option {
	return func(s *Supervisor) { s.signals = sigs }
}

// New creates a supervisor for the given tool version.
func New(version string, opts ...Option) *Supervisor {
	s := &Supervisor{
		version:    version,
		stdout:     os.Stdout,
		exit:       os.Exit,
		store:      func() (*store.Store, error) { return store.New("") },
		logger:     log.Default(),
		signals:    []os.Signal{os.Interrupt},
		executable: os.Executable,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ExitCode returns an error that makes the supervisor exit with code.
// A zero code yields nil.
func ExitCode(code int) error {
	if code == 0 {
		return nil
	}
	return &ExitCodeError{Code: code}
}

func (e *ExitCodeError) Error() string { return fmt.Sprintf("exit status %d", e.Code) }

func (e *PanicError) Error() string { return fmt.Sprintf("panic: %v", e.Value) }

func (c *signalCause) Error() string { return "received " + c.sig.String() }

// Run calls fn with a context that is cancelled when one of the configured
// signals arrives. A second signal exits with 130 without waiting for fn.
// If fn returns nil, Run returns 0. Otherwise the error is
// classified, the diagnostic is written, and the process exits with the
// kind's code; Run returns that code only when the exit function returns.
func (s *Supervisor) Run(ctx context.Context, fn func(context.Context) error) int {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	var (
		mu       sync.Mutex
		received os.Signal
	)
	done := make(chan struct{})
	if len(s.signals) > 0 {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, s.signals...)
		defer signal.Stop(sigs)
		go func() {
			for {
				select {
				case sig := <-sigs:
					mu.Lock()
					first := received == nil
					if first {
						received = sig
					}
					mu.Unlock()
					if !first {
						s.logger.Warn("received second signal, exiting", "signal", sig)
						s.exit(issue.ExitInterrupted)
						return
					}
					s.logger.Debug("received signal, cancelling", "signal", sig)
					cancel(&signalCause{sig: sig})
				case <-done:
					return
				}
			}
		}()
	}

	err := call(ctx, fn)
	close(done)
	if err == nil {
		return 0
	}

	var exitErr *ExitCodeError
	if errors.As(err, &exitErr) {
		s.exit(exitErr.Code)
		return exitErr.Code
	}

	mu.Lock()
	sig := received
	mu.Unlock()
	if sig != nil && issue.KindOf(err) != issue.KindInterrupted {
		err = issue.NewInterruptedError(sig, err)
	}

	code := s.handle(err)
	s.exit(code)
	return code
}

// call runs fn, converting a panic into a PanicError.
func call(ctx context.Context, fn func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return fn(ctx)
}

// handle writes the summary and the diagnostic record and returns the exit code.
func (s *Supervisor) handle(err error) int {
	kind := issue.KindOf(err)
	summary := fmt.Sprintf("%s: %s: %s", kind.Message(), typeName(err, kind), err)
	fmt.Fprintln(s.stdout, summary)

	rec := &Record{
		Version:    s.version,
		Executable: s.executablePath(),
		Summary:    summary,
		Trace:      traceOf(err),
	}
	s.writeRecord(rec)
	return kind.ExitCode()
}

// writeRecord writes rec to the store log, or to stdout when the store is
// unusable.
func (s *Supervisor) writeRecord(rec *Record) {
	st, err := s.store()
	if err != nil {
		s.logger.Debug("cannot resolve store", "err", err)
		fmt.Fprintln(s.stdout, "Failed to write to log")
		s.writeTo(s.stdout, rec)
		return
	}
	if err := st.Ensure(); err != nil {
		s.logger.Debug("cannot create store", "err", err)
	}

	logPath := st.LogPath()
	if !st.Writable() {
		fmt.Fprintf(s.stdout, "Failed to write to log at %s\n", logPath)
		s.writeTo(s.stdout, rec)
		return
	}

	f, err := os.Create(logPath)
	if err != nil {
		fmt.Fprintf(s.stdout, "Failed to write to log at %s\n", logPath)
		s.writeTo(s.stdout, rec)
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Error("failed to close log", "path", logPath, "err", err)
		}
	}()
	fmt.Fprintf(s.stdout, "Check the log at %s\n", logPath)
	s.writeTo(f, rec)
}

func (s *Supervisor) writeTo(w io.Writer, rec *Record) {
	if _, err := rec.WriteTo(w); err != nil {
		s.logger.Error("failed to write diagnostic record", "err", err)
	}
}

func (s *Supervisor) executablePath() string {
	path, err := s.executable()
	if err != nil {
		return "unknown"
	}
	return path
}
