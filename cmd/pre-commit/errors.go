// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/invowk/precommit/internal/issue"
	"github.com/invowk/precommit/internal/supervisor"
)

// usageError marks command-line misuse: bad flags, arguments or flag values.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

// usageArgs wraps a cobra argument validator so its failures are usage errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return &usageError{err: err}
		}
		return nil
	}
}

// handleError is the fang error handler. Usage errors get fang's styled
// rendering. For everything else the supervisor prints the summary, so
// only the extra help is written here: the catalog entry for a linked
// issue, or the suggestions of an actionable error.
func (a *App) handleError(w io.Writer, styles fang.Styles, err error) {
	var ue *usageError
	if errors.As(err, &ue) {
		fang.DefaultErrorHandler(w, styles, err)
		return
	}
	var exitErr *supervisor.ExitCodeError
	if errors.As(err, &exitErr) {
		return
	}

	if id := issue.IssueOf(err); id != 0 {
		if is := issue.Get(id); is != nil {
			style := "notty"
			if a.isTerminal() {
				style = "dark"
			}
			if out, rerr := is.Render(style); rerr == nil {
				fmt.Fprint(w, out)
				return
			}
		}
	}

	var ae *issue.ActionableError
	if errors.As(err, &ae) && ae.HasSuggestions() {
		fmt.Fprintln(w, ErrorStyle.Render("Error: ")+ae.Format(a.verbose))
	}
}
