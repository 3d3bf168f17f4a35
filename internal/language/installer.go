// SPDX-License-Identifier: MPL-2.0

package language

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	pkgerrors "github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	"github.com/invowk/precommit/internal/hook"
)

// Installer provisions environments on demand. Concurrent requests for the
// same (kind, prefix, version, dependencies) tuple share one provisioning,
// and healthy environments are reused for the rest of the process.
type Installer struct {
	registry *Registry
	logger   *log.Logger

	group singleflight.Group
	mu    sync.Mutex
	envs  map[string]*Environment
}

// NewInstaller creates an installer over the registry's backends.
func NewInstaller(registry *Registry, logger *log.Logger) *Installer {
	if logger == nil {
		logger = log.Default()
	}
	return &Installer{
		registry: registry,
		logger:   logger,
		envs:     make(map[string]*Environment),
	}
}

// Ensure returns the backend for h and a healthy environment for it,
// installing the environment if needed. An environment that fails its
// health check after installation is removed and installed once more.
func (i *Installer) Ensure(ctx context.Context, h *hook.Hook) (Backend, *Environment, error) {
	return i.ensure(ctx, h, false)
}

// Reinstall discards any existing environment for h and provisions it again.
func (i *Installer) Reinstall(ctx context.Context, h *hook.Hook) (Backend, *Environment, error) {
	return i.ensure(ctx, h, true)
}

func (i *Installer) ensure(ctx context.Context, h *hook.Hook, force bool) (Backend, *Environment, error) {
	backend, err := i.registry.Get(Kind(h.Language()))
	if err != nil {
		return nil, nil, err
	}
	spec := SpecFor(backend, h)
	key := spec.tupleKey()

	v, err, _ := i.group.Do(key, func() (any, error) {
		if !force {
			if env := i.cached(key); env != nil && backend.Healthy(env) {
				return env, nil
			}
		}
		env, err := i.install(ctx, backend, spec, force)
		if err != nil {
			return nil, err
		}
		i.mu.Lock()
		i.envs[key] = env
		i.mu.Unlock()
		return env, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return backend, v.(*Environment), nil
}

func (i *Installer) install(ctx context.Context, backend Backend, spec EnvironmentSpec, force bool) (*Environment, error) {
	if force {
		if err := discard(backend, spec); err != nil {
			return nil, err
		}
	}

	env, err := backend.InstallEnvironment(ctx, spec)
	if err != nil {
		return nil, err
	}
	if backend.Healthy(env) {
		env.Status = StatusHealthy
		return env, nil
	}

	i.logger.Warn("environment is unhealthy, reinstalling", "kind", spec.Kind, "prefix", spec.Prefix)
	if err := removeEnvironmentDir(env); err != nil {
		return nil, err
	}
	env, err = backend.InstallEnvironment(ctx, spec)
	if err != nil {
		return nil, err
	}
	if !backend.Healthy(env) {
		return nil, pkgerrors.Errorf("environment for %s hook in %s is unhealthy after reinstalling", spec.Kind, spec.Prefix)
	}
	env.Status = StatusHealthy
	return env, nil
}

// discard removes the on-disk directory of a previously installed environment.
func discard(backend Backend, spec EnvironmentSpec) error {
	loc, ok := backend.(EnvironmentLocator)
	if !ok {
		return nil
	}
	return removeEnvironmentDir(&Environment{Dir: loc.EnvironmentPath(spec)})
}

func (i *Installer) cached(key string) *Environment {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.envs[key]
}

func removeEnvironmentDir(env *Environment) error {
	if env.Dir == "" {
		return nil
	}
	if err := os.RemoveAll(env.Dir); err != nil {
		return fmt.Errorf("remove environment %s: %w", env.Dir, err)
	}
	return nil
}
