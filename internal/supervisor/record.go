// SPDX-License-Identifier: MPL-2.0

package supervisor

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"reflect"
	"runtime"
	"strings"

	"github.com/invowk/precommit/internal/issue"
)

// Record is the diagnostic written for an error that escaped the supervisor.
type Record struct {
	Version    string
	Executable string
	// Summary is the one-line "<kind message>: <type>: <error>" summary.
	Summary string
	Trace   string
}

// WriteTo renders the record: a version block followed by an error block
// holding the summary and the trace, each fenced for pasting into an issue.
func (r *Record) WriteTo(w io.Writer) (int64, error) {
	var b bytes.Buffer
	line := func(s string) {
		b.WriteString(s)
		b.WriteByte('\n')
	}

	line("### version information")
	line("")
	line("```")
	line("pre-commit version: " + r.Version)
	line("go version:")
	for l := range strings.Lines(runtime.Version() + " " + runtime.Compiler) {
		line("    " + strings.TrimRight(l, "\n"))
	}
	line("executable: " + r.Executable)
	line("os: " + runtime.GOOS)
	line("platform: " + runtime.GOOS + "/" + runtime.GOARCH)
	line("```")
	line("")

	line("### error information")
	line("")
	line("```")
	line(r.Summary)
	line("```")
	line("")
	line("```")
	line(strings.TrimRight(r.Trace, "\n"))
	line("```")

	return b.WriteTo(w)
}

// typeName names the error in the summary line.
func typeName(err error, kind issue.Kind) string {
	switch kind {
	case issue.KindFatal:
		return "FatalError"
	case issue.KindInterrupted:
		return "InterruptedError"
	}
	var pe *PanicError
	if errors.As(err, &pe) {
		return "PanicError"
	}
	t := reflect.TypeOf(err)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.String()
}

// traceOf returns the panic stack, the innermost recorded stack, or the
// error chain when no stack was recorded.
func traceOf(err error) string {
	var pe *PanicError
	if errors.As(err, &pe) {
		return fmt.Sprintf("%v\n\n%s", pe.Value, pe.Stack)
	}

	var b strings.Builder
	b.WriteString(err.Error())
	b.WriteString("\n")
	if st := issue.StackTrace(err); st != "" {
		b.WriteString(st)
		return b.String()
	}
	b.WriteString("\nno stack recorded; error chain:")
	for i, e := 1, err; e != nil; i, e = i+1, errors.Unwrap(e) {
		fmt.Fprintf(&b, "\n  %d. %T: %v", i, e, e)
	}
	return b.String()
}
