// SPDX-License-Identifier: MPL-2.0

package language

import (
	"maps"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/invowk/precommit/internal/container"
	"github.com/invowk/precommit/internal/issue"
)

type (
	// Registry holds the backends by kind.
	Registry struct {
		backends map[Kind]Backend
	}

	// RegistryOptions configures BuildRegistry.
	RegistryOptions struct {
		// Engine backs the docker and docker_image kinds.
		Engine container.Engine
		// Concurrency is the number of batches a hook may run at once.
		Concurrency int
		Logger      *log.Logger
	}
)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{backends: make(map[Kind]Backend)}
}

// Register adds a backend under its kind, replacing any previous one.
func (r *Registry) Register(b Backend) {
	r.backends[b.Kind()] = b
}

// Get returns the backend for kind. An unknown kind is a fatal error.
func (r *Registry) Get(kind Kind) (Backend, error) {
	b, ok := r.backends[kind]
	if !ok {
		return nil, issue.NewFatalError(&UnknownLanguageError{Value: kind}).WithIssue(issue.UnknownLanguageId)
	}
	return b, nil
}

// Kinds returns the registered kinds in sorted order.
func (r *Registry) Kinds() []Kind {
	return slices.Sorted(maps.Keys(r.backends))
}

// BuildRegistry registers every bundled backend.
func BuildRegistry(opts RegistryOptions) *Registry {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	dockerOpts := []DockerOption{WithDockerLogger(logger), WithDockerConcurrency(opts.Concurrency)}

	r := NewRegistry()
	r.Register(NewDockerBackend(opts.Engine, dockerOpts...))
	r.Register(NewDockerImageBackend(opts.Engine, dockerOpts...))
	r.Register(NewSystemBackend(opts.Concurrency))
	r.Register(NewScriptBackend(opts.Concurrency))
	r.Register(NewPCREBackend(opts.Concurrency))
	return r
}
