// SPDX-License-Identifier: MPL-2.0

// Package xargs runs a command template over a list of file arguments.
//
// The file list is split into ordered, contiguous batches so that no single
// invocation exceeds the platform's argument-length ceiling. Each batch runs as
// its own subprocess; exit codes are aggregated (optionally negated) and the
// combined output is returned in batch order regardless of how many batches ran
// concurrently.
package xargs
