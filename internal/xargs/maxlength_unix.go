// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package xargs

import "github.com/tklauser/go-sysconf"

func platformMaxLength() int {
	argMax, err := sysconf.Sysconf(sysconf.SC_ARG_MAX)
	if err != nil || argMax <= 0 {
		return fallbackMaxLength
	}
	return clampMaxLength(int(argMax) - headroom - environSize())
}

func clampMaxLength(n int) int {
	return max(min(n, capMaxLength), fallbackMaxLength)
}
