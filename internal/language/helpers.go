// SPDX-License-Identifier: MPL-2.0

package language

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/invowk/precommit/internal/issue"
)

// AssertVersionDefault fails fatally unless version is the default.
func AssertVersionDefault(kind Kind, version string) error {
	if version != DefaultVersion {
		return issue.Fatalf(
			"For now, pre-commit requires system-installed %s -- you selected `language_version: %s`",
			kind, version,
		).WithIssue(issue.UnsupportedLanguageVersionId)
	}
	return nil
}

// AssertNoAdditionalDeps fails fatally if any additional dependencies are declared.
func AssertNoAdditionalDeps(kind Kind, deps []string) error {
	if len(deps) > 0 {
		return issue.Fatalf(
			"For now, pre-commit does not support additional_dependencies for %s -- you selected `additional_dependencies: %v`",
			kind, deps,
		).WithIssue(issue.UnsupportedAdditionalDependenciesId)
	}
	return nil
}

// EnvironmentDir returns the environment directory for name and version
// inside the hook repository.
func EnvironmentDir(prefix, name, version string) string {
	return filepath.Join(prefix, name+"-"+version)
}

// IdentityKey fingerprints the prefix directory name. The same prefix always
// yields the same key, so images are reused across runs.
func IdentityKey(prefix string) string {
	sum := md5.Sum([]byte(filepath.Base(prefix)))
	return hex.EncodeToString(sum[:])
}

// dirExists reports whether dir exists and is a directory.
func dirExists(dir string) bool {
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}

// provisionDir runs build and creates dir only once it succeeds. Nothing is
// written next to dir while build runs, so a build whose context is the
// parent directory sees the same tree on every attempt. An existing dir is
// left as is.
func provisionDir(dir string, build func() error) error {
	if err := build(); err != nil {
		return err
	}
	if err := os.Mkdir(dir, 0o755); err != nil && !errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("create environment directory: %w", err)
	}
	return nil
}
