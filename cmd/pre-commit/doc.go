// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the pre-commit CLI.
//
// The command tree is built per invocation from an App, which carries the
// configuration provider, the container engine factory and the output
// streams. Execute wraps the whole invocation in the failure supervisor.
package cmd
