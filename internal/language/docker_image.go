// SPDX-License-Identifier: MPL-2.0

package language

import (
	"context"

	"github.com/invowk/precommit/internal/container"
	"github.com/invowk/precommit/internal/hook"
	"github.com/invowk/precommit/internal/issue"
	"github.com/invowk/precommit/internal/xargs"
)

// DockerImageBackend runs a published image. The hook entry names the image
// (optionally preceded by run flags such as --entrypoint), so nothing is built.
type DockerImageBackend struct {
	noEnvironment
	containerRunner
}

// NewDockerImageBackend creates the docker_image backend on top of engine.
func NewDockerImageBackend(engine container.Engine, opts ...DockerOption) *DockerImageBackend {
	return &DockerImageBackend{
		noEnvironment:   noEnvironment{kind: KindDockerImage},
		containerRunner: newContainerRunner(engine, opts),
	}
}

// RunHook appends the hook's command to the container run prefix.
func (b *DockerImageBackend) RunHook(ctx context.Context, h *hook.Hook, fileArgs []string, color bool) (*xargs.Result, error) {
	if err := b.assertDaemon(ctx); err != nil {
		return nil, err
	}
	cmd, err := h.Cmd()
	if err != nil {
		return nil, issue.NewFatalError(err)
	}
	prefix, err := b.runPrefix(ctx, container.RunOptions{Command: cmd})
	if err != nil {
		return nil, err
	}
	return b.run(ctx, h, prefix, fileArgs, color)
}
