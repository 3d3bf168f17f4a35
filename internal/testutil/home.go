// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"path/filepath"
	"runtime"
	"testing"
)

// SetHomeDir points the platform's home variable at dir for the rest of the
// test.
func SetHomeDir(t testing.TB, dir string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Setenv("USERPROFILE", dir)
		return
	}
	t.Setenv("HOME", dir)
}

// IsolateStore clears every variable that influences the store location and
// points the home directory at a fresh temporary directory, which it returns.
func IsolateStore(t testing.TB) string {
	t.Helper()
	home := t.TempDir()
	SetHomeDir(t, home)
	t.Setenv("PRE_COMMIT_HOME", "")
	t.Setenv("XDG_CACHE_HOME", "")
	return home
}

// DefaultStoreDir is where the store resolves to under IsolateStore.
func DefaultStoreDir(home string) string {
	return filepath.Join(home, ".cache", "pre-commit")
}
