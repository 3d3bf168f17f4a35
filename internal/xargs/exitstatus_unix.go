// SPDX-License-Identifier: MPL-2.0

//go:build unix

package xargs

import (
	"os/exec"
	"syscall"
)

// exitStatus maps a signal-terminated process to 128+signal, as shells do.
func exitStatus(err *exec.ExitError) int {
	if ws, ok := err.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return err.ExitCode()
}
