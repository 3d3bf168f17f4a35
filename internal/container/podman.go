// SPDX-License-Identifier: MPL-2.0

package container

// PodmanEngine implements the Engine interface using the Podman CLI.
// Podman accepts the docker argument vocabulary used here, including the
// :Z private SELinux label on bind mounts.
type PodmanEngine struct {
	*BaseCLIEngine
}

// NewPodmanEngine creates a new Podman engine.
func NewPodmanEngine(opts ...BaseCLIEngineOption) *PodmanEngine {
	allOpts := append([]BaseCLIEngineOption{WithName(string(EngineTypePodman))}, opts...)
	return &PodmanEngine{
		BaseCLIEngine: NewBaseCLIEngine(lookPathOr("podman"), allOpts...),
	}
}
