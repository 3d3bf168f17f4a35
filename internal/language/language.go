// SPDX-License-Identifier: MPL-2.0

package language

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/invowk/precommit/internal/hook"
	"github.com/invowk/precommit/internal/xargs"
)

const (
	KindDocker      Kind = "docker"
	KindDockerImage Kind = "docker_image"
	KindSystem      Kind = "system"
	KindScript      Kind = "script"
	KindPCRE        Kind = "pcre"

	// DefaultVersion is the only version the bundled backends support.
	DefaultVersion = hook.DefaultLanguageVersion
)

const (
	// StatusUninstalled means no environment exists on disk.
	StatusUninstalled Status = iota
	// StatusBuilt means provisioning completed but health was not checked yet.
	StatusBuilt
	// StatusHealthy means the environment passed its health check.
	StatusHealthy
)

// ErrUnknownLanguage is the sentinel error wrapped by UnknownLanguageError.
var ErrUnknownLanguage = errors.New("unknown language")

type (
	// Kind identifies a language backend.
	Kind string

	// Status is the lifecycle state of an Environment.
	Status int

	// EnvironmentSpec describes the environment a hook needs.
	EnvironmentSpec struct {
		Kind                   Kind
		Prefix                 string
		Version                string
		AdditionalDependencies []string
	}

	// Environment is a provisioned, reusable execution sandbox.
	Environment struct {
		// Key is the deterministic identity derived from the prefix.
		Key          string
		Kind         Kind
		Version      string
		Dependencies []string
		// Dir is the on-disk directory, or "" for kinds without one.
		Dir    string
		Status Status
	}

	// Backend provisions environments and runs hooks for one language kind.
	Backend interface {
		// Kind returns the language kind the backend serves.
		Kind() Kind
		// DefaultVersion returns the version used when a hook does not pin one.
		DefaultVersion() string
		// Healthy reports whether env is usable. It must not mutate state.
		Healthy(env *Environment) bool
		// InstallEnvironment provisions the environment. It is idempotent.
		InstallEnvironment(ctx context.Context, spec EnvironmentSpec) (*Environment, error)
		// RunHook runs h against fileArgs. A failing tool is reported in the
		// result, not as an error.
		RunHook(ctx context.Context, h *hook.Hook, fileArgs []string, color bool) (*xargs.Result, error)
	}

	// EnvironmentLocator is implemented by backends whose environments live on disk.
	EnvironmentLocator interface {
		EnvironmentPath(spec EnvironmentSpec) string
	}

	// UnknownLanguageError is returned when no backend serves a kind.
	UnknownLanguageError struct {
		Value Kind
	}
)

func (e *UnknownLanguageError) Error() string {
	return fmt.Sprintf("unknown language %q", e.Value)
}

func (e *UnknownLanguageError) Unwrap() error { return ErrUnknownLanguage }

// String returns the string representation of the Kind.
func (k Kind) String() string { return string(k) }

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusBuilt:
		return "built"
	case StatusHealthy:
		return "healthy"
	default:
		return "uninstalled"
	}
}

// SpecFor returns the environment spec of h, resolving the default version
// through the backend.
func SpecFor(b Backend, h *hook.Hook) EnvironmentSpec {
	version := h.LanguageVersion()
	if version == "" || version == hook.DefaultLanguageVersion {
		version = b.DefaultVersion()
	}
	return EnvironmentSpec{
		Kind:                   b.Kind(),
		Prefix:                 h.Prefix(),
		Version:                version,
		AdditionalDependencies: h.AdditionalDependencies(),
	}
}

// tupleKey identifies a (kind, prefix, version, dependency set) tuple.
func (s EnvironmentSpec) tupleKey() string {
	deps := slices.Clone(s.AdditionalDependencies)
	slices.Sort(deps)
	return strings.Join([]string{string(s.Kind), s.Prefix, s.Version, strings.Join(deps, "\x00")}, "\x1f")
}
