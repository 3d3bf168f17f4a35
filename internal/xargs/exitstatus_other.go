// SPDX-License-Identifier: MPL-2.0

//go:build !unix

package xargs

import "os/exec"

func exitStatus(err *exec.ExitError) int {
	if code := err.ExitCode(); code >= 0 {
		return code
	}
	return 1
}
