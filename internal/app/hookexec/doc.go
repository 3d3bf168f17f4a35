// SPDX-License-Identifier: MPL-2.0

// Package hookexec runs a single hook end to end: it resolves the backend
// for the hook's language, provisions or reuses the environment, applies the
// hook's filename policy and runs the batches.
package hookexec
