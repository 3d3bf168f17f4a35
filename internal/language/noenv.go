// SPDX-License-Identifier: MPL-2.0

package language

import (
	"context"
	"path/filepath"
	"runtime"

	"github.com/invowk/precommit/internal/hook"
	"github.com/invowk/precommit/internal/issue"
	"github.com/invowk/precommit/internal/xargs"
)

type (
	// noEnvironment implements the environment half of Backend for kinds
	// that run directly on the host.
	noEnvironment struct {
		kind Kind
	}

	// SystemBackend runs the hook command as-is on the host.
	SystemBackend struct {
		noEnvironment
		concurrency int
	}

	// ScriptBackend runs a script shipped in the hook repository.
	ScriptBackend struct {
		noEnvironment
		concurrency int
	}

	// PCREBackend greps files with a Perl-compatible regular expression. A
	// match anywhere fails the hook.
	PCREBackend struct {
		noEnvironment
		concurrency int
	}
)

func (n noEnvironment) Kind() Kind             { return n.kind }
func (n noEnvironment) DefaultVersion() string { return DefaultVersion }
func (n noEnvironment) Healthy(*Environment) bool {
	return true
}

// InstallEnvironment only validates the spec; there is nothing to provision.
func (n noEnvironment) InstallEnvironment(_ context.Context, spec EnvironmentSpec) (*Environment, error) {
	if err := AssertVersionDefault(n.kind, spec.Version); err != nil {
		return nil, err
	}
	if err := AssertNoAdditionalDeps(n.kind, spec.AdditionalDependencies); err != nil {
		return nil, err
	}
	return &Environment{
		Key:     IdentityKey(spec.Prefix),
		Kind:    n.kind,
		Version: spec.Version,
		Status:  StatusBuilt,
	}, nil
}

// NewSystemBackend creates the system backend.
func NewSystemBackend(concurrency int) *SystemBackend {
	return &SystemBackend{noEnvironment: noEnvironment{kind: KindSystem}, concurrency: concurrency}
}

func (b *SystemBackend) RunHook(ctx context.Context, h *hook.Hook, fileArgs []string, color bool) (*xargs.Result, error) {
	cmd, err := h.Cmd()
	if err != nil {
		return nil, issue.NewFatalError(err)
	}
	return xargs.Run(ctx, cmd, fileArgs,
		xargs.WithColor(color),
		xargs.WithConcurrency(targetConcurrency(h, b.concurrency)),
	)
}

// NewScriptBackend creates the script backend.
func NewScriptBackend(concurrency int) *ScriptBackend {
	return &ScriptBackend{noEnvironment: noEnvironment{kind: KindScript}, concurrency: concurrency}
}

// RunHook resolves the entry relative to the hook repository.
func (b *ScriptBackend) RunHook(ctx context.Context, h *hook.Hook, fileArgs []string, color bool) (*xargs.Result, error) {
	cmd, err := h.Cmd()
	if err != nil {
		return nil, issue.NewFatalError(err)
	}
	cmd[0] = joinPrefix(h.Prefix(), cmd[0])
	return xargs.Run(ctx, cmd, fileArgs,
		xargs.WithColor(color),
		xargs.WithConcurrency(targetConcurrency(h, b.concurrency)),
	)
}

// NewPCREBackend creates the pcre backend.
func NewPCREBackend(concurrency int) *PCREBackend {
	return &PCREBackend{noEnvironment: noEnvironment{kind: KindPCRE}, concurrency: concurrency}
}

// RunHook runs `grep -H -n -P <args> <entry>`. grep exits zero on a match,
// so the result is negated.
func (b *PCREBackend) RunHook(ctx context.Context, h *hook.Hook, fileArgs []string, color bool) (*xargs.Result, error) {
	cmd := append([]string{grepCommand(runtime.GOOS), "-H", "-n", "-P"}, h.Args()...)
	cmd = append(cmd, h.Entry())
	return xargs.Run(ctx, cmd, fileArgs,
		xargs.WithNegate(true),
		xargs.WithColor(color),
		xargs.WithConcurrency(targetConcurrency(h, b.concurrency)),
	)
}

// grepCommand returns the GNU grep binary name; macOS ships BSD grep, which
// lacks -P.
func grepCommand(goos string) string {
	if goos == "darwin" {
		return "ggrep"
	}
	return "grep"
}

// targetConcurrency is 1 for hooks that require serial execution.
func targetConcurrency(h *hook.Hook, concurrency int) int {
	if h.RequireSerial() {
		return 1
	}
	return max(concurrency, 1)
}

// joinPrefix resolves a script path against the hook repository root.
func joinPrefix(prefix, script string) string {
	if filepath.IsAbs(script) {
		return script
	}
	return filepath.Join(prefix, script)
}
