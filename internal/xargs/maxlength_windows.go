// SPDX-License-Identifier: MPL-2.0

//go:build windows

package xargs

// CreateProcess limits the command line to 32767 UTF-16 code units.
func platformMaxLength() int {
	return 1<<15 - headroom
}
