// SPDX-License-Identifier: MPL-2.0

package hookexec

import (
	"context"
	"errors"
	"io"
	"slices"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/invowk/precommit/internal/hook"
	"github.com/invowk/precommit/internal/issue"
	"github.com/invowk/precommit/internal/language"
	"github.com/invowk/precommit/internal/testutil"
	"github.com/invowk/precommit/internal/xargs"
)

// recordingBackend records the arguments of each RunHook call.
type recordingBackend struct {
	installs   int
	installErr error
	exitCode   int
	runErr     error
	calls      [][]string
	colors     []bool
}

func (b *recordingBackend) Kind() language.Kind                { return "recording" }
func (b *recordingBackend) DefaultVersion() string             { return language.DefaultVersion }
func (b *recordingBackend) Healthy(*language.Environment) bool { return true }

func (b *recordingBackend) InstallEnvironment(_ context.Context, spec language.EnvironmentSpec) (*language.Environment, error) {
	b.installs++
	if b.installErr != nil {
		return nil, b.installErr
	}
	return &language.Environment{Kind: b.Kind(), Version: spec.Version}, nil
}

func (b *recordingBackend) RunHook(_ context.Context, _ *hook.Hook, fileArgs []string, color bool) (*xargs.Result, error) {
	b.calls = append(b.calls, fileArgs)
	b.colors = append(b.colors, color)
	if b.runErr != nil {
		return nil, b.runErr
	}
	return &xargs.Result{ExitCode: b.exitCode, Output: []byte("out\n")}, nil
}

func newRunner(b language.Backend, opts ...Option) *Runner {
	r := language.NewRegistry()
	r.Register(b)
	logger := log.New(io.Discard)
	return NewRunner(language.NewInstaller(r, logger), append([]Option{WithLogger(logger)}, opts...)...)
}

func recordingHook(t *testing.T, cfg hook.Config) *hook.Hook {
	t.Helper()
	cfg.ID = "rec"
	cfg.Entry = "rec"
	cfg.Language = "recording"
	h, err := hook.New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func TestRunner_Run(t *testing.T) {
	files := []string{"a.py", "b.py"}

	tests := []struct {
		name         string
		cfg          hook.Config
		files        []string
		exitCode     int
		wantStatus   Status
		wantCalls    [][]string
		wantInstalls int
	}{
		{
			name:         "passes filenames",
			cfg:          hook.Config{PassFilenames: true},
			files:        files,
			wantStatus:   StatusPassed,
			wantCalls:    [][]string{files},
			wantInstalls: 1,
		},
		{
			name:         "drops filenames",
			cfg:          hook.Config{PassFilenames: false},
			files:        files,
			wantStatus:   StatusPassed,
			wantCalls:    [][]string{nil},
			wantInstalls: 1,
		},
		{
			name:         "failing hook",
			cfg:          hook.Config{PassFilenames: true},
			files:        files,
			exitCode:     1,
			wantStatus:   StatusFailed,
			wantCalls:    [][]string{files},
			wantInstalls: 1,
		},
		{
			name:       "no files skips",
			cfg:        hook.Config{PassFilenames: true},
			wantStatus: StatusSkipped,
		},
		{
			name:         "always run without files",
			cfg:          hook.Config{PassFilenames: true, AlwaysRun: true},
			wantStatus:   StatusPassed,
			wantCalls:    [][]string{nil},
			wantInstalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &recordingBackend{exitCode: tt.exitCode}
			r := newRunner(b)

			out, err := r.Run(context.Background(), recordingHook(t, tt.cfg), tt.files, true)
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if out.Status != tt.wantStatus {
				t.Errorf("Status = %s, want %s", out.Status, tt.wantStatus)
			}
			if out.ExitCode != tt.exitCode {
				t.Errorf("ExitCode = %d, want %d", out.ExitCode, tt.exitCode)
			}
			if !slices.EqualFunc(b.calls, tt.wantCalls, slices.Equal) {
				t.Errorf("RunHook calls = %q, want %q", b.calls, tt.wantCalls)
			}
			if b.installs != tt.wantInstalls {
				t.Errorf("installs = %d, want %d", b.installs, tt.wantInstalls)
			}
			for _, c := range b.colors {
				if !c {
					t.Error("color flag was not forwarded")
				}
			}
		})
	}
}

func TestRunner_PropagatesErrorsUnchanged(t *testing.T) {
	fatal := issue.Fatalf("Docker is either not running or not configured in this environment")

	t.Run("install", func(t *testing.T) {
		b := &recordingBackend{installErr: fatal}
		_, err := newRunner(b).Run(context.Background(), recordingHook(t, hook.Config{PassFilenames: true}), []string{"x"}, false)
		if !errors.Is(err, fatal) || issue.KindOf(err) != issue.KindFatal {
			t.Errorf("Run() error = %v, want the install error", err)
		}
		if len(b.calls) != 0 {
			t.Error("hook should not run when installation fails")
		}
	})

	t.Run("run", func(t *testing.T) {
		interrupted := issue.NewInterruptedError(nil, context.Canceled)
		b := &recordingBackend{runErr: interrupted}
		_, err := newRunner(b).Run(context.Background(), recordingHook(t, hook.Config{PassFilenames: true}), []string{"x"}, false)
		if issue.KindOf(err) != issue.KindInterrupted {
			t.Errorf("Run() error = %v, want interrupted", err)
		}
	})
}

func TestRunner_Duration(t *testing.T) {
	clock := testutil.NewFakeClock(time.Time{})
	clock.SetStep(1500 * time.Millisecond)
	r := newRunner(&recordingBackend{}, WithClock(clock.Now))

	out, err := r.Run(context.Background(), recordingHook(t, hook.Config{PassFilenames: true}), []string{"x"}, false)
	if err != nil {
		t.Fatal(err)
	}
	if out.Duration != 1500*time.Millisecond {
		t.Errorf("Duration = %v, want 1.5s", out.Duration)
	}
}

func TestRunner_Reinstall(t *testing.T) {
	b := &recordingBackend{}
	r := newRunner(b, WithReinstall(true))
	h := recordingHook(t, hook.Config{PassFilenames: true})

	for range 2 {
		if _, err := r.Run(context.Background(), h, []string{"x"}, false); err != nil {
			t.Fatal(err)
		}
	}
	if b.installs != 2 {
		t.Errorf("installs = %d, want 2", b.installs)
	}
}
