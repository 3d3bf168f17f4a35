// SPDX-License-Identifier: MPL-2.0

//go:build windows

package store

import "os"

// writable checks by creating a temporary file; directory ACLs are not
// reflected in mode bits on windows.
func writable(dir string) bool {
	f, err := os.CreateTemp(dir, ".writable-*")
	if err != nil {
		return false
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return true
}
