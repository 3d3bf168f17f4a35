// SPDX-License-Identifier: MPL-2.0

package language

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/invowk/precommit/internal/hook"
	"github.com/invowk/precommit/internal/issue"
)

func newHook(t *testing.T, cfg hook.Config) *hook.Hook {
	t.Helper()
	if cfg.ID == "" {
		cfg.ID = "test-hook"
	}
	h, err := hook.New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func TestNoEnvironment_InstallEnvironment(t *testing.T) {
	for _, b := range []Backend{NewSystemBackend(1), NewScriptBackend(1), NewPCREBackend(1)} {
		t.Run(string(b.Kind()), func(t *testing.T) {
			env, err := b.InstallEnvironment(context.Background(),
				EnvironmentSpec{Kind: b.Kind(), Prefix: "/repo", Version: DefaultVersion})
			if err != nil {
				t.Fatalf("InstallEnvironment() error = %v", err)
			}
			if env.Dir != "" {
				t.Errorf("Dir = %q, want none", env.Dir)
			}
			if !b.Healthy(env) {
				t.Error("host-run environments are always healthy")
			}

			_, err = b.InstallEnvironment(context.Background(),
				EnvironmentSpec{Kind: b.Kind(), Prefix: "/repo", Version: "3.12"})
			if issue.IssueOf(err) != issue.UnsupportedLanguageVersionId {
				t.Errorf("pinned version error = %v, want version issue", err)
			}
		})
	}
}

func TestSystemBackend_RunHook(t *testing.T) {
	t.Setenv(fakeDockerEnv, "1")
	h := newHook(t, hook.Config{
		Entry:         os.Args[0] + " echo",
		Language:      string(KindSystem),
		Args:          []string{"--flag"},
		PassFilenames: true,
	})

	res, err := NewSystemBackend(2).RunHook(context.Background(), h, []string{"one.txt", "two.txt"}, false)
	if err != nil {
		t.Fatalf("RunHook() error = %v", err)
	}
	if res.ExitCode != 0 {
		t.Errorf("ExitCode = %d", res.ExitCode)
	}
	out := string(res.Output)
	for _, want := range []string{"--flag", "one.txt", "two.txt"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q is missing %q", out, want)
		}
	}
}

func TestSystemBackend_MissingExecutable(t *testing.T) {
	h := newHook(t, hook.Config{Entry: "definitely-not-a-real-binary-xyz", Language: string(KindSystem)})

	_, err := NewSystemBackend(1).RunHook(context.Background(), h, []string{"a"}, false)
	if issue.KindOf(err) != issue.KindFatal {
		t.Errorf("RunHook() error = %v, want fatal", err)
	}
}

func TestScriptBackend_RunsFromPrefix(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	prefix := t.TempDir()
	script := "#!/bin/sh\necho \"script:$*\"\nexit 3\n"
	if err := os.WriteFile(filepath.Join(prefix, "check.sh"), []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	h := newHook(t, hook.Config{Entry: "check.sh", Language: string(KindScript), Prefix: prefix})

	res, err := NewScriptBackend(1).RunHook(context.Background(), h, []string{"f.go"}, false)
	if err != nil {
		t.Fatalf("RunHook() error = %v", err)
	}
	if res.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", res.ExitCode)
	}
	if got := strings.TrimSpace(string(res.Output)); got != "script:f.go" {
		t.Errorf("Output = %q", got)
	}
}

func TestGrepCommand(t *testing.T) {
	if got := grepCommand("darwin"); got != "ggrep" {
		t.Errorf("grepCommand(darwin) = %q", got)
	}
	if got := grepCommand("linux"); got != "grep" {
		t.Errorf("grepCommand(linux) = %q", got)
	}
}

func TestPCREBackend_RunHook(t *testing.T) {
	grep := grepCommand(runtime.GOOS)
	if _, err := exec.LookPath(grep); err != nil {
		t.Skipf("%s not installed", grep)
	}
	if err := exec.Command(grep, "-P", "x", os.DevNull).Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) || exitErr.ExitCode() != 1 {
			t.Skipf("%s does not support -P", grep)
		}
	}

	dir := t.TempDir()
	clean := filepath.Join(dir, "clean.txt")
	dirty := filepath.Join(dir, "dirty.txt")
	if err := os.WriteFile(clean, []byte("all good\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dirty, []byte("ok\n\tindented\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	h := newHook(t, hook.Config{Entry: `^\t`, Language: string(KindPCRE)})
	b := NewPCREBackend(1)

	res, err := b.RunHook(context.Background(), h, []string{clean}, false)
	if err != nil {
		t.Fatalf("RunHook(clean) error = %v", err)
	}
	if res.ExitCode != 0 {
		t.Errorf("clean file ExitCode = %d, want 0", res.ExitCode)
	}

	res, err = b.RunHook(context.Background(), h, []string{clean, dirty}, false)
	if err != nil {
		t.Fatalf("RunHook(dirty) error = %v", err)
	}
	if res.ExitCode != 1 {
		t.Errorf("matching file ExitCode = %d, want 1", res.ExitCode)
	}
	if want := dirty + ":2:"; !strings.Contains(string(res.Output), want) {
		t.Errorf("Output = %q, want it to contain %q", res.Output, want)
	}
}

func TestTargetConcurrency(t *testing.T) {
	serial := newHook(t, hook.Config{Entry: "x", Language: "system", RequireSerial: true})
	parallel := newHook(t, hook.Config{Entry: "x", Language: "system"})

	if got := targetConcurrency(serial, 8); got != 1 {
		t.Errorf("serial hook concurrency = %d", got)
	}
	if got := targetConcurrency(parallel, 8); got != 8 {
		t.Errorf("parallel hook concurrency = %d", got)
	}
	if got := targetConcurrency(parallel, 0); got != 1 {
		t.Errorf("zero concurrency should floor at 1, got %d", got)
	}
}
