// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// It defines the closed set of error kinds the failure supervisor understands
// (fatal, interrupted, unexpected), the error types that carry those kinds,
// actionable errors with remediation steps, and a catalog of Markdown-formatted
// guidance for the failures users hit most often.
package issue
