// SPDX-License-Identifier: MPL-2.0

package supervisor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	pkgerrors "github.com/pkg/errors"

	"github.com/invowk/precommit/internal/issue"
	"github.com/invowk/precommit/internal/store"
)

type harness struct {
	sup    *Supervisor
	stdout *bytes.Buffer
	store  *store.Store
	exits  []int
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "store"))
	if err != nil {
		t.Fatal(err)
	}
	h := &harness{stdout: &bytes.Buffer{}, store: st}
	all := append([]Option{
		WithStdout(h.stdout),
		WithExit(func(code int) { h.exits = append(h.exits, code) }),
		WithStore(func() (*store.Store, error) { return st, nil }),
		WithLogger(log.New(io.Discard)),
		WithSignals(),
	}, opts...)
	h.sup = New("1.2.3", all...)
	return h
}

func (h *harness) logContents(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(h.store.LogPath())
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	return string(data)
}

func TestRun_NormalCompletion(t *testing.T) {
	h := newHarness(t)

	code := h.sup.Run(context.Background(), func(context.Context) error { return nil })

	if code != 0 {
		t.Errorf("Run() = %d, want 0", code)
	}
	if len(h.exits) != 0 {
		t.Errorf("exit called with %v", h.exits)
	}
	if h.stdout.Len() != 0 {
		t.Errorf("stdout = %q, want nothing", h.stdout)
	}
	if _, err := os.Stat(h.store.LogPath()); !os.IsNotExist(err) {
		t.Errorf("no log should be written, stat err = %v", err)
	}
}

func TestRun_Fatal(t *testing.T) {
	h := newHarness(t)

	code := h.sup.Run(context.Background(), func(context.Context) error {
		return issue.Fatalf("bad config")
	})

	if code != 1 || len(h.exits) != 1 || h.exits[0] != 1 {
		t.Errorf("Run() = %d, exits = %v, want 1", code, h.exits)
	}
	wantSummary := "An error has occurred: FatalError: bad config"
	out := h.stdout.String()
	if !strings.HasPrefix(out, wantSummary+"\n") {
		t.Errorf("stdout should start with the summary, got %q", out)
	}
	if !strings.Contains(out, "Check the log at "+h.store.LogPath()) {
		t.Errorf("stdout should point at the log, got %q", out)
	}

	logText := h.logContents(t)
	for _, want := range []string{"An error has occurred", "bad config", "pre-commit version: 1.2.3"} {
		if !strings.Contains(logText, want) {
			t.Errorf("log is missing %q:\n%s", want, logText)
		}
	}
}

func TestRun_Interrupted(t *testing.T) {
	h := newHarness(t)

	code := h.sup.Run(context.Background(), func(context.Context) error {
		return issue.NewInterruptedError(os.Interrupt, context.Canceled)
	})

	if code != 130 {
		t.Errorf("Run() = %d, want 130", code)
	}
	if !strings.HasPrefix(h.stdout.String(), "Interrupted (^C): InterruptedError: ") {
		t.Errorf("stdout = %q", h.stdout)
	}
	if !strings.HasPrefix(h.logContents(t), "### version information\n") {
		t.Error("log should start with the version header")
	}
}

func TestRun_Unexpected(t *testing.T) {
	h := newHarness(t)

	code := h.sup.Run(context.Background(), func(context.Context) error {
		return pkgerrors.New("boom")
	})

	if code != 3 {
		t.Errorf("Run() = %d, want 3", code)
	}
	logText := h.logContents(t)
	for _, want := range []string{"An unexpected error has occurred", "boom", "supervisor_test.go"} {
		if !strings.Contains(logText, want) {
			t.Errorf("log is missing %q:\n%s", want, logText)
		}
	}
}

func TestRun_UnexpectedWithoutStack(t *testing.T) {
	h := newHarness(t)
	cause := errors.New("disk on fire")

	h.sup.Run(context.Background(), func(context.Context) error {
		return &os.PathError{Op: "open", Path: "/x", Err: cause}
	})

	logText := h.logContents(t)
	if !strings.Contains(logText, "An unexpected error has occurred: fs.PathError: open /x: disk on fire") {
		t.Errorf("summary missing from log:\n%s", logText)
	}
	if !strings.Contains(logText, "error chain:") || !strings.Contains(logText, "*errors.errorString: disk on fire") {
		t.Errorf("error chain missing from log:\n%s", logText)
	}
}

func TestRun_UnwritableStoreFallsBackToStdout(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for this user")
	}
	dir := filepath.Join(t.TempDir(), "ro")
	if err := os.Mkdir(dir, 0o555); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })
	st, err := store.New(dir)
	if err != nil {
		t.Fatal(err)
	}
	h := newHarness(t, WithStore(func() (*store.Store, error) { return st, nil }))

	code := h.sup.Run(context.Background(), func(context.Context) error {
		return issue.Fatalf("bad config")
	})

	if code != 1 {
		t.Errorf("Run() = %d, want 1", code)
	}
	out := h.stdout.String()
	for _, want := range []string{
		"Failed to write to log at " + st.LogPath(),
		"### version information",
		"### error information",
		"bad config",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("stdout is missing %q:\n%s", want, out)
		}
	}
	if _, err := os.Stat(st.LogPath()); !os.IsNotExist(err) {
		t.Errorf("no log file should exist, stat err = %v", err)
	}
}

func TestRun_Panic(t *testing.T) {
	h := newHarness(t)

	code := h.sup.Run(context.Background(), func(context.Context) error {
		panic("kaboom")
	})

	if code != 3 {
		t.Errorf("Run() = %d, want 3", code)
	}
	if !strings.HasPrefix(h.stdout.String(), "An unexpected error has occurred: PanicError: panic: kaboom") {
		t.Errorf("stdout = %q", h.stdout)
	}
	if !strings.Contains(h.logContents(t), "goroutine") {
		t.Error("log should contain the panic stack")
	}
}

func TestRun_ExitCodePassthrough(t *testing.T) {
	h := newHarness(t)

	code := h.sup.Run(context.Background(), func(context.Context) error {
		return ExitCode(7)
	})

	if code != 7 || len(h.exits) != 1 || h.exits[0] != 7 {
		t.Errorf("Run() = %d, exits = %v, want 7", code, h.exits)
	}
	if h.stdout.Len() != 0 {
		t.Errorf("hook failures should not print a diagnostic, got %q", h.stdout)
	}
	if _, err := os.Stat(h.store.LogPath()); !os.IsNotExist(err) {
		t.Errorf("no log should be written, stat err = %v", err)
	}
}

func TestExitCode_Zero(t *testing.T) {
	if err := ExitCode(0); err != nil {
		t.Errorf("ExitCode(0) = %v, want nil", err)
	}
}

func TestRecord_Format(t *testing.T) {
	var b bytes.Buffer
	rec := &Record{Version: "9.9.9", Executable: "/usr/bin/pre-commit", Summary: "An error has occurred: FatalError: x", Trace: "trace line\n"}
	if _, err := rec.WriteTo(&b); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSuffix(b.String(), "\n"), "\n")
	want := []string{
		"### version information",
		"",
		"```",
		"pre-commit version: 9.9.9",
		"go version:",
	}
	for i, w := range want {
		if lines[i] != w {
			t.Errorf("line %d = %q, want %q", i, lines[i], w)
		}
	}
	tail := lines[len(lines)-10:]
	wantTail := []string{
		"",
		"### error information",
		"",
		"```",
		"An error has occurred: FatalError: x",
		"```",
		"",
		"```",
		"trace line",
		"```",
	}
	for i, w := range wantTail {
		if tail[i] != w {
			t.Errorf("tail line %d = %q, want %q", i, tail[i], w)
		}
	}
	if !strings.Contains(b.String(), "executable: /usr/bin/pre-commit\n") {
		t.Error("record is missing the executable")
	}
}
