// SPDX-License-Identifier: MPL-2.0

//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package xargs

import "os/exec"

// runColor falls back to pipes where pseudo-terminals are unavailable.
func runColor(c *exec.Cmd) ([]byte, error) {
	return runPlain(c)
}
