// SPDX-License-Identifier: MPL-2.0

// Package supervisor wraps the top-level unit of work. It classifies any
// error that escapes, writes a diagnostic record to the store's log file
// (or to stdout when the store is not writable) and terminates the process
// with the exit code of the error's kind.
package supervisor
