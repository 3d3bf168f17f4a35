// SPDX-License-Identifier: MPL-2.0

package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	// HomeEnv overrides the store location.
	HomeEnv = "PRE_COMMIT_HOME"
	// LogFileName is the name of the error log inside the store.
	LogFileName = "pre-commit.log"
	// ReadmeFileName is written when the store is created.
	ReadmeFileName = "README"

	readme = "This directory is maintained by the pre-commit project.\n" +
		"Learn more: https://github.com/pre-commit/pre-commit\n"
)

// Store is a store directory. The directory is created on demand by Ensure.
type Store struct {
	dir string
}

// DefaultDir resolves the store location: $PRE_COMMIT_HOME, then
// $XDG_CACHE_HOME/pre-commit, then ~/.cache/pre-commit.
func DefaultDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	cache := os.Getenv("XDG_CACHE_HOME")
	if cache == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		cache = filepath.Join(home, ".cache")
	}
	return filepath.Join(cache, "pre-commit"), nil
}

// New returns the store at dir, or at DefaultDir when dir is empty. It does
// not touch the filesystem.
func New(dir string) (*Store, error) {
	if dir == "" {
		var err error
		if dir, err = DefaultDir(); err != nil {
			return nil, err
		}
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve store directory %s: %w", dir, err)
	}
	return &Store{dir: abs}, nil
}

// Dir returns the store directory.
func (s *Store) Dir() string { return s.dir }

// LogPath returns the error log location.
func (s *Store) LogPath() string { return filepath.Join(s.dir, LogFileName) }

// Ensure creates the store directory and its README if missing.
func (s *Store) Ensure() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create store %s: %w", s.dir, err)
	}
	path := filepath.Join(s.dir, ReadmeFileName)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("write store readme: %w", err)
	}
	if _, err := f.WriteString(readme); err != nil {
		_ = f.Close()
		return fmt.Errorf("write store readme: %w", err)
	}
	return f.Close()
}

// Writable reports whether new files can be created in the store directory.
func (s *Store) Writable() bool {
	return writable(s.dir)
}

// Clean removes the store directory and everything in it.
func (s *Store) Clean() error {
	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("remove store %s: %w", s.dir, err)
	}
	return nil
}
