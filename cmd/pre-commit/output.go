// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/invowk/precommit/internal/app/hookexec"
	"github.com/invowk/precommit/internal/hook"
)

const (
	// statusColumns is the width of a status line.
	statusColumns = 79
	noFilesMsg    = "(no files to check)"
)

// statusLine renders "<name>.....<status>" padded to statusColumns.
func statusLine(name, endMsg, status string, style lipgloss.Style, color bool) string {
	dots := max(statusColumns-len(name)-len(endMsg)-len(status), 3)
	rendered := status
	if color {
		rendered = style.Render(status)
	}
	return name + strings.Repeat(".", dots) + endMsg + rendered
}

// printOutcome writes the status line, then the hook id, exit code and
// output of a failed hook.
func (a *App) printOutcome(h *hook.Hook, out *hookexec.Outcome, color bool) {
	w := a.stdout
	switch out.Status {
	case hookexec.StatusSkipped:
		fmt.Fprintln(w, statusLine(h.Name(), noFilesMsg, string(out.Status), skippedStyle, color))
		return
	case hookexec.StatusPassed:
		fmt.Fprintln(w, statusLine(h.Name(), "", string(out.Status), passedStyle, color))
	default:
		fmt.Fprintln(w, statusLine(h.Name(), "", string(out.Status), failedStyle, color))
	}

	detail := func(s string) {
		if color {
			s = detailStyle.Render(s)
		}
		fmt.Fprintln(w, s)
	}
	if out.Status == hookexec.StatusFailed {
		detail("- hook id: " + h.ID())
		detail(fmt.Sprintf("- exit code: %d", out.ExitCode))
	}
	if a.verbose {
		detail(fmt.Sprintf("- duration: %.2fs", out.Duration.Seconds()))
	}

	output := bytes.TrimSpace(out.Output)
	if len(output) > 0 && (out.Status == hookexec.StatusFailed || a.verbose) {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s\n", output)
		fmt.Fprintln(w)
	}
}
