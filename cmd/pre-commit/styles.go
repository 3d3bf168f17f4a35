// SPDX-License-Identifier: MPL-2.0

package cmd

import "github.com/charmbracelet/lipgloss"

// Color palette shared by all CLI output.
const (
	// ColorPrimary is purple, for titles.
	ColorPrimary = lipgloss.Color("#7C3AED")
	// ColorMuted is gray, for subtitles and secondary text.
	ColorMuted = lipgloss.Color("#6B7280")
	// ColorSuccess is green, for passed hooks.
	ColorSuccess = lipgloss.Color("#10B981")
	// ColorError is red, for failed hooks and errors.
	ColorError = lipgloss.Color("#EF4444")
	// ColorSkipped is turquoise, for hooks with nothing to check.
	ColorSkipped = lipgloss.Color("#14B8A6")
)

var (
	// TitleStyle is for the program name in help output.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// SubtitleStyle is for section headers in help output.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// ErrorStyle prefixes error details.
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorError)

	passedStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	failedStyle = lipgloss.NewStyle().
			Foreground(ColorError)

	skippedStyle = lipgloss.NewStyle().
			Foreground(ColorSkipped)

	detailStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)
)
