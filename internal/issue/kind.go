// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"os"

	pkgerrors "github.com/pkg/errors"
)

const (
	// KindUnexpected is anything not anticipated by the other kinds.
	KindUnexpected Kind = iota
	// KindFatal is a recognized, intentional halt (misconfiguration, unmet precondition).
	KindFatal
	// KindInterrupted is a user-initiated interruption.
	KindInterrupted
)

// Process exit codes for each error kind.
const (
	ExitFatal       = 1
	ExitUnexpected  = 3
	ExitInterrupted = 130
)

// ErrInterrupted is the sentinel error wrapped by InterruptedError.
var ErrInterrupted = errors.New("interrupted")

type (
	// Kind is the closed classification of errors that escape to the supervisor.
	Kind int

	// FatalError marks an intentional halt. The process exits with ExitFatal.
	// Err carries a stack captured at construction.
	FatalError struct {
		Err error
		// IssueID optionally links the error to a catalog entry.
		IssueID Id
	}

	// InterruptedError reports that the user interrupted a blocking operation.
	InterruptedError struct {
		Signal os.Signal
		Err    error
	}

	// stackTracer is implemented by errors created with github.com/pkg/errors.
	stackTracer interface {
		StackTrace() pkgerrors.StackTrace
	}
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindFatal:
		return "fatal"
	case KindInterrupted:
		return "interrupted"
	default:
		return "unexpected"
	}
}

// ExitCode returns the process exit code for the kind.
func (k Kind) ExitCode() int {
	switch k {
	case KindFatal:
		return ExitFatal
	case KindInterrupted:
		return ExitInterrupted
	default:
		return ExitUnexpected
	}
}

// Message returns the one-line summary prefix written for the kind.
func (k Kind) Message() string {
	switch k {
	case KindFatal:
		return "An error has occurred"
	case KindInterrupted:
		return "Interrupted (^C)"
	default:
		return "An unexpected error has occurred"
	}
}

// NewFatalError wraps err as a fatal error, recording the caller's stack.
func NewFatalError(err error) *FatalError {
	if err == nil {
		return nil
	}
	return &FatalError{Err: pkgerrors.WithStack(err)}
}

// Fatalf formats a fatal error, recording the caller's stack.
func Fatalf(format string, args ...any) *FatalError {
	return &FatalError{Err: pkgerrors.Errorf(format, args...)}
}

// WithIssue links the fatal error to a catalog entry and returns it.
func (e *FatalError) WithIssue(id Id) *FatalError {
	e.IssueID = id
	return e
}

// Error implements the error interface.
func (e *FatalError) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error.
func (e *FatalError) Unwrap() error { return e.Err }

// NewInterruptedError wraps the cause of an interruption (usually a context error).
func NewInterruptedError(sig os.Signal, cause error) *InterruptedError {
	return &InterruptedError{Signal: sig, Err: cause}
}

// Error implements the error interface.
func (e *InterruptedError) Error() string {
	switch {
	case e.Signal != nil && e.Err != nil:
		return fmt.Sprintf("received %s: %v", e.Signal, e.Err)
	case e.Signal != nil:
		return "received " + e.Signal.String()
	case e.Err != nil:
		return e.Err.Error()
	default:
		return ErrInterrupted.Error()
	}
}

// Unwrap returns ErrInterrupted and the cause so both match with errors.Is.
func (e *InterruptedError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInterrupted}
	}
	return []error{ErrInterrupted, e.Err}
}

// KindOf classifies err. Interruption wins over fatal so that a cancelled
// operation wrapped in configuration context still exits with 130.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnexpected
	}
	if errors.Is(err, ErrInterrupted) {
		return KindInterrupted
	}
	var fe *FatalError
	if errors.As(err, &fe) {
		return KindFatal
	}
	return KindUnexpected
}

// IssueOf returns the catalog id attached anywhere in err's chain, or 0.
func IssueOf(err error) Id {
	var fe *FatalError
	if errors.As(err, &fe) {
		return fe.IssueID
	}
	return 0
}

// StackTrace returns the innermost stack recorded in err's chain, formatted
// one frame per line, or "" when no stack was recorded.
func StackTrace(err error) string {
	var trace pkgerrors.StackTrace
	for e := err; e != nil; e = errors.Unwrap(e) {
		if st, ok := e.(stackTracer); ok {
			trace = st.StackTrace()
		}
	}
	if len(trace) == 0 {
		return ""
	}
	return fmt.Sprintf("%+v", trace)
}
