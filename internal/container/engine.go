// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"errors"
	"fmt"
	"io"
)

const (
	EngineTypeDocker EngineType = "docker"
	EngineTypePodman EngineType = "podman"
)

var (
	// ErrDaemonNotRunning is returned by Ping when the daemon does not answer.
	ErrDaemonNotRunning = errors.New("container daemon is not running")

	// ErrUnknownEngineType is the sentinel error wrapped by UnknownEngineTypeError.
	ErrUnknownEngineType = errors.New("unknown container engine type")
)

type (
	// Engine is a container runtime driven through its CLI.
	Engine interface {
		// Name returns the engine name (docker or podman).
		Name() string
		// BinaryPath returns the path of the CLI binary.
		BinaryPath() string
		// Ping checks that the daemon is reachable by listing running containers.
		Ping(ctx context.Context) error
		// Build builds the image in opts.ContextDir.
		Build(ctx context.Context, opts BuildOptions) error
		// RunArgs returns the argument vector (without the binary) for a run.
		RunArgs(opts RunOptions) []string
		// Rootless reports whether the daemon runs rootless. The detection
		// runs once per engine; later calls return the cached answer.
		Rootless(ctx context.Context) bool
		// HostPath translates a local path to the path the daemon sees.
		HostPath(ctx context.Context, path string) (string, error)
	}

	// EngineType identifies the container engine type.
	EngineType string

	// UnknownEngineTypeError is returned by NewEngine for unsupported types.
	UnknownEngineTypeError struct {
		Value EngineType
	}

	// BuildOptions contains options for building an image.
	BuildOptions struct {
		// ContextDir is the build context; the build runs with it as working directory.
		ContextDir HostFilesystemPath
		// Tag is the image tag.
		Tag ImageTag
		// Labels are applied to the image with --label.
		Labels []string
		// Pull refreshes base images before building.
		Pull bool
		// Stdout and Stderr receive build output. When both are nil the output
		// is captured and attached to the returned error.
		Stdout io.Writer
		Stderr io.Writer
	}

	// RunOptions contains options for a container run.
	RunOptions struct {
		// Image is the image to run. An empty image is left for the caller to append.
		Image ImageTag
		// Remove automatically removes the container after exit.
		Remove bool
		// User is passed with -u (uid:gid) when non-empty.
		User string
		// Volumes are bind mounts passed with -v.
		Volumes []VolumeMount
		// WorkDir is the working directory inside the container.
		WorkDir MountTargetPath
		// Entrypoint overrides the image entry point.
		Entrypoint string
		// Command is appended after the image.
		Command []string
	}
)

// Error implements the error interface.
func (e *UnknownEngineTypeError) Error() string {
	return fmt.Sprintf("unknown container engine type %q (valid: docker, podman)", e.Value)
}

// Unwrap returns ErrUnknownEngineType for errors.Is() compatibility.
func (e *UnknownEngineTypeError) Unwrap() error { return ErrUnknownEngineType }

// Validate returns an error if the EngineType is not docker or podman.
func (t EngineType) Validate() error {
	switch t {
	case EngineTypeDocker, EngineTypePodman:
		return nil
	default:
		return &UnknownEngineTypeError{Value: t}
	}
}

// String returns the string representation of the EngineType.
func (t EngineType) String() string { return string(t) }

// NewEngine creates the engine of the given type.
func NewEngine(engineType EngineType, opts ...BaseCLIEngineOption) (Engine, error) {
	switch engineType {
	case EngineTypeDocker:
		return NewDockerEngine(opts...), nil
	case EngineTypePodman:
		return NewPodmanEngine(opts...), nil
	default:
		return nil, &UnknownEngineTypeError{Value: engineType}
	}
}
