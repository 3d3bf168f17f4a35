// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helpers shared by tests: a controllable clock,
// isolation of the home and store directories, and a limit on concurrent
// container operations.
package testutil
