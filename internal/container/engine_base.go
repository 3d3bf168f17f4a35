// SPDX-License-Identifier: MPL-2.0

package container

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/invowk/precommit/internal/issue"
)

type (
	// ExecCommandFunc is the function signature for creating exec.Cmd.
	// This allows injection of mock implementations for testing.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// BaseCLIEngineOption configures a BaseCLIEngine.
	BaseCLIEngineOption func(*BaseCLIEngine)

	// BaseCLIEngine implements Engine on top of a docker-compatible CLI.
	// Docker and Podman engines embed this struct.
	BaseCLIEngine struct {
		name        string
		binaryPath  string
		execCommand ExecCommandFunc
		logger      *log.Logger

		// docker-in-docker detection
		cgroupPath string
		hostname   func() (string, error)

		rootless *rootlessState
	}

	// rootlessState memoizes `system info` for one engine binary.
	rootlessState struct {
		once     sync.Once
		rootless bool
	}
)

// rootlessStates holds one rootlessState per engine name and binary path,
// shared by every engine created in the process.
var rootlessStates sync.Map

// WithName sets the engine name used in messages.
func WithName(name string) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) {
		e.name = name
	}
}

// WithExecCommand sets a custom exec command function for testing.
func WithExecCommand(fn ExecCommandFunc) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) {
		e.execCommand = fn
	}
}

// WithLogger sets the logger used for command tracing.
func WithLogger(logger *log.Logger) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) {
		e.logger = logger
	}
}

// WithCgroupPath overrides the cgroup file consulted to detect whether the
// process runs inside a container. The default is /proc/1/cgroup.
func WithCgroupPath(path string) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) {
		e.cgroupPath = path
	}
}

// WithHostname overrides how the current container's name is resolved.
func WithHostname(fn func() (string, error)) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) {
		e.hostname = fn
	}
}

// NewBaseCLIEngine creates a new base engine with the given binary path.
func NewBaseCLIEngine(binaryPath string, opts ...BaseCLIEngineOption) *BaseCLIEngine {
	e := &BaseCLIEngine{
		binaryPath:  binaryPath,
		execCommand: commandWithoutKill,
		logger:      log.Default(),
		cgroupPath:  "/proc/1/cgroup",
		hostname:    os.Hostname,
	}
	for _, opt := range opts {
		opt(e)
	}
	state, _ := rootlessStates.LoadOrStore(e.name+"\x00"+e.binaryPath, &rootlessState{})
	e.rootless = state.(*rootlessState)
	return e
}

// commandWithoutKill creates engine commands that outlive ctx cancellation.
// An interrupt reaches the engine CLI through the terminal, and the caller
// reports it once the command has exited on its own.
func commandWithoutKill(_ context.Context, name string, arg ...string) *exec.Cmd {
	return exec.Command(name, arg...) //nolint:gosec,noctx // binary resolved at construction
}

// lookPathOr resolves name on PATH, falling back to the bare name so that a
// missing binary surfaces as a failed ping rather than at construction.
func lookPathOr(name string) string {
	if path, err := exec.LookPath(name); err == nil {
		return path
	}
	return name
}

// Name returns the engine name.
func (e *BaseCLIEngine) Name() string {
	return e.name
}

// BinaryPath returns the path to the container engine binary.
func (e *BaseCLIEngine) BinaryPath() string {
	return e.binaryPath
}

// BuildArgs constructs arguments for an image build. The context is always
// "." and comes last; the command runs from the context directory.
//
// Generated command: <binary> build --tag <tag> [--label <l>]... [--pull] .
func (e *BaseCLIEngine) BuildArgs(opts BuildOptions) []string {
	args := []string{"build", "--tag", string(opts.Tag)}
	for _, l := range opts.Labels {
		args = append(args, "--label", l)
	}
	if opts.Pull {
		args = append(args, "--pull")
	}
	return append(args, ".")
}

// RunArgs constructs arguments for a container run.
//
// Generated command: <binary> run [--rm] [-u <user>] [-v <vol>]... [--workdir <dir>] [--entrypoint <exe>] [<image>] [command...]
func (e *BaseCLIEngine) RunArgs(opts RunOptions) []string {
	args := []string{"run"}

	if opts.Remove {
		args = append(args, "--rm")
	}
	if opts.User != "" {
		args = append(args, "-u", opts.User)
	}
	for _, v := range opts.Volumes {
		args = append(args, "-v", v.String())
	}
	if opts.WorkDir != "" {
		args = append(args, "--workdir", string(opts.WorkDir))
	}
	if opts.Entrypoint != "" {
		args = append(args, "--entrypoint", opts.Entrypoint)
	}
	if opts.Image != "" {
		args = append(args, string(opts.Image))
	}
	return append(args, opts.Command...)
}

// CreateCommand creates an exec.Cmd for the given arguments.
func (e *BaseCLIEngine) CreateCommand(ctx context.Context, args ...string) *exec.Cmd {
	e.logger.Debug("container command", "engine", e.name, "args", strings.Join(args, " "))
	return e.execCommand(ctx, e.binaryPath, args...)
}

// RunCommandWithOutput executes a command with stdout captured to a buffer.
func (e *BaseCLIEngine) RunCommandWithOutput(ctx context.Context, args ...string) (string, error) {
	cmd := e.CreateCommand(ctx, args...)
	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("command %s %v failed: %w", e.binaryPath, args, err)
	}
	return out.String(), nil
}

// Ping lists running containers; a zero exit status means the daemon is reachable.
func (e *BaseCLIEngine) Ping(ctx context.Context) error {
	cmd := e.CreateCommand(ctx, "ps")
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%w: %s ps: %w: %s", ErrDaemonNotRunning, e.name, err, bytes.TrimSpace(out))
	}
	return nil
}

// Build builds an image from opts.ContextDir.
func (e *BaseCLIEngine) Build(ctx context.Context, opts BuildOptions) error {
	if err := opts.Tag.Validate(); err != nil {
		return err
	}
	if err := opts.ContextDir.Validate(); err != nil {
		return err
	}

	cmd := e.CreateCommand(ctx, e.BuildArgs(opts)...)
	cmd.Dir = string(opts.ContextDir)

	var captured bytes.Buffer
	if opts.Stdout == nil && opts.Stderr == nil {
		cmd.Stdout = &captured
		cmd.Stderr = &captured
	} else {
		cmd.Stdout = opts.Stdout
		cmd.Stderr = opts.Stderr
	}

	if err := cmd.Run(); err != nil {
		return buildContainerError(e.name, opts, captured.String(), err)
	}
	return nil
}

// Rootless reports whether the daemon runs rootless. `system info` runs once
// per process for each engine name and binary path.
func (e *BaseCLIEngine) Rootless(ctx context.Context) bool {
	state := e.rootless
	state.once.Do(func() {
		out, err := e.RunCommandWithOutput(ctx, "system", "info")
		if err != nil {
			e.logger.Debug("rootless detection failed, assuming rootful", "engine", e.name, "err", err)
			return
		}
		state.rootless = ParseRootless(out)
	})
	return state.rootless
}

// ParseRootless scans `system info` output. Rootless docker lists "rootless"
// among its security options; rootless podman prints "rootless: true".
func ParseRootless(info string) bool {
	for line := range strings.Lines(info) {
		if strings.HasPrefix(strings.TrimSpace(line), "rootless") {
			return !strings.Contains(line, "false")
		}
	}
	return false
}

// buildContainerError creates an actionable error for image build failures.
func buildContainerError(engine string, opts BuildOptions, output string, cause error) error {
	return issue.NewErrorContext("build hook image").
		WithEngine(engine).
		WithPrefix(string(opts.ContextDir)).
		WithOutput(output).
		WithSuggestion("Check the Dockerfile in %s for errors", opts.ContextDir).
		WithSuggestion("Ensure base images are available (try: %s pull <base-image>)", engine).
		Wrap(cause).
		Err()
}
