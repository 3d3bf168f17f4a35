// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
)

// outputTailLines is how much captured tool output Format shows when not verbose.
const outputTailLines = 20

type (
	// ActionableError is a failure the user can act on: the operation that
	// failed, the container engine and hook repository involved, the tool
	// output that explains it and what to try next.
	//
	//	return issue.NewErrorContext("build hook image").
	//		WithEngine("docker").
	//		WithPrefix(prefix).
	//		WithOutput(buildLog).
	//		WithSuggestion("Check the Dockerfile in %s", prefix).
	//		Wrap(err).
	//		Err()
	ActionableError struct {
		// Operation is a verb phrase such as "build hook image".
		Operation string
		// Engine is the container engine name, if one was involved.
		Engine string
		// Prefix is the hook repository directory, if one was involved.
		Prefix string
		// Path is the file being read, shown by Format.
		Path string
		// Output is the captured output of the failing tool, shown by Format.
		Output      string
		Suggestions []string
		Cause       error
	}

	// ErrorContext builds an ActionableError step by step.
	ErrorContext struct {
		err ActionableError
	}
)

// NewErrorContext starts an error for the given operation.
func NewErrorContext(operation string) *ErrorContext {
	return &ErrorContext{err: ActionableError{Operation: operation}}
}

// WithEngine records the container engine the operation used.
func (c *ErrorContext) WithEngine(engine string) *ErrorContext {
	c.err.Engine = engine
	return c
}

// WithPrefix records the hook repository the operation worked on.
func (c *ErrorContext) WithPrefix(prefix string) *ErrorContext {
	c.err.Prefix = prefix
	return c
}

// WithPath records the file the operation read.
func (c *ErrorContext) WithPath(path string) *ErrorContext {
	c.err.Path = path
	return c
}

// WithOutput attaches the failing tool's output. Surrounding whitespace is dropped.
func (c *ErrorContext) WithOutput(output string) *ErrorContext {
	c.err.Output = strings.TrimSpace(output)
	return c
}

// WithSuggestion adds a hint, formatted with fmt.Sprintf when args are given.
func (c *ErrorContext) WithSuggestion(format string, args ...any) *ErrorContext {
	if len(args) > 0 {
		format = fmt.Sprintf(format, args...)
	}
	c.err.Suggestions = append(c.err.Suggestions, format)
	return c
}

// Wrap sets the underlying cause.
func (c *ErrorContext) Wrap(err error) *ErrorContext {
	c.err.Cause = err
	return c
}

// Err returns the built error.
func (c *ErrorContext) Err() error {
	ae := c.err
	ae.Suggestions = append([]string(nil), c.err.Suggestions...)
	return &ae
}

// Error returns "failed to <operation> [for <prefix>] [(<engine>)][: <cause>]".
func (e *ActionableError) Error() string {
	var b strings.Builder
	b.WriteString("failed to ")
	b.WriteString(e.Operation)
	if e.Prefix != "" {
		b.WriteString(" for ")
		b.WriteString(e.Prefix)
	}
	if e.Engine != "" {
		b.WriteString(" (")
		b.WriteString(e.Engine)
		b.WriteString(")")
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *ActionableError) Unwrap() error { return e.Cause }

// HasSuggestions reports whether Format has anything beyond Error to show.
func (e *ActionableError) HasSuggestions() bool {
	return len(e.Suggestions) > 0 || e.Output != ""
}

// Format renders the error for the terminal: the message, the file, the
// suggestions and the tool output. Unless verbose, only the last
// outputTailLines lines of output are shown; verbose adds the error chain.
func (e *ActionableError) Format(verbose bool) string {
	var b strings.Builder
	b.WriteString(e.Error())

	if e.Path != "" {
		b.WriteString("\n\nFile: ")
		b.WriteString(e.Path)
	}
	if len(e.Suggestions) > 0 {
		b.WriteString("\n")
		for _, s := range e.Suggestions {
			b.WriteString("\n  • ")
			b.WriteString(s)
		}
	}
	if e.Output != "" {
		lines := strings.Split(e.Output, "\n")
		if !verbose && len(lines) > outputTailLines {
			fmt.Fprintf(&b, "\n\nOutput (last %d of %d lines):", outputTailLines, len(lines))
			lines = lines[len(lines)-outputTailLines:]
		} else {
			b.WriteString("\n\nOutput:")
		}
		for _, l := range lines {
			b.WriteString("\n    ")
			b.WriteString(l)
		}
	}

	if verbose && e.Cause != nil {
		b.WriteString("\n\nError chain:")
		depth := 1
		for err := e.Cause; err != nil; err = errors.Unwrap(err) {
			fmt.Fprintf(&b, "\n  %d. %s", depth, err)
			depth++
		}
	}
	return b.String()
}
