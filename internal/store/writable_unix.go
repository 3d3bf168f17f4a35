// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package store

import "golang.org/x/sys/unix"

func writable(dir string) bool {
	return unix.Access(dir, unix.W_OK) == nil
}
