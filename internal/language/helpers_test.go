// SPDX-License-Identifier: MPL-2.0

package language

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestEnvironmentDir(t *testing.T) {
	got := EnvironmentDir(filepath.FromSlash("/cache/repo"), "docker", "default")
	if want := filepath.FromSlash("/cache/repo/docker-default"); got != want {
		t.Errorf("EnvironmentDir() = %q, want %q", got, want)
	}
}

func TestProvisionDir(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		parent := t.TempDir()
		dir := filepath.Join(parent, "env-default")

		if err := provisionDir(dir, func() error { return nil }); err != nil {
			t.Fatalf("provisionDir() error = %v", err)
		}
		assertOnlyEntry(t, parent, "env-default")
	})

	t.Run("nothing is created while building", func(t *testing.T) {
		parent := t.TempDir()
		dir := filepath.Join(parent, "env-default")

		err := provisionDir(dir, func() error {
			assertOnlyEntry(t, parent, "")
			return nil
		})
		if err != nil {
			t.Fatalf("provisionDir() error = %v", err)
		}
	})

	t.Run("existing directory", func(t *testing.T) {
		parent := t.TempDir()
		dir := filepath.Join(parent, "env-default")
		if err := os.Mkdir(dir, 0o755); err != nil {
			t.Fatal(err)
		}

		if err := provisionDir(dir, func() error { return nil }); err != nil {
			t.Fatalf("provisionDir() error = %v", err)
		}
		assertOnlyEntry(t, parent, "env-default")
	})

	t.Run("build failure", func(t *testing.T) {
		parent := t.TempDir()
		dir := filepath.Join(parent, "env-default")
		boom := errors.New("boom")

		err := provisionDir(dir, func() error { return boom })
		if !errors.Is(err, boom) {
			t.Fatalf("provisionDir() error = %v, want %v", err, boom)
		}
		assertOnlyEntry(t, parent, "")
	})

	t.Run("panic", func(t *testing.T) {
		parent := t.TempDir()
		dir := filepath.Join(parent, "env-default")

		func() {
			defer func() { _ = recover() }()
			_ = provisionDir(dir, func() error { panic("interrupted") })
		}()
		assertOnlyEntry(t, parent, "")
	})
}

// assertOnlyEntry checks that dir holds exactly name, or nothing when name is "".
func assertOnlyEntry(t *testing.T, dir, name string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	switch {
	case name == "" && len(names) != 0:
		t.Errorf("%s should be empty, has %v", dir, names)
	case name != "" && (len(names) != 1 || names[0] != name):
		t.Errorf("%s entries = %v, want [%s]", dir, names, name)
	}
}
