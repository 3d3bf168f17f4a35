// SPDX-License-Identifier: MPL-2.0

// Package store manages the pre-commit store directory, which holds hook
// repositories, their environments and the error log.
package store
