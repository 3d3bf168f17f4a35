// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
)

// ErrPathNotBindMounted is the sentinel error wrapped by PathNotBindMountedError.
var ErrPathNotBindMounted = errors.New("path not present in a bind mount")

type (
	// PathNotBindMountedError is returned by HostPath when the process runs in
	// a container and the path is not under any of its bind mounts.
	PathNotBindMountedError struct {
		Path string
	}

	inspectedContainer struct {
		HostConfig struct {
			Binds []string `json:"Binds"`
		} `json:"HostConfig"`
	}
)

func (e *PathNotBindMountedError) Error() string {
	return fmt.Sprintf("path %s not present in a bind mount; volume mount will fail when running this in a container", e.Path)
}

func (e *PathNotBindMountedError) Unwrap() error { return ErrPathNotBindMounted }

// InContainer reports whether the process runs inside a Docker container,
// judged by the init process's cgroup.
func (e *BaseCLIEngine) InContainer() bool {
	data, err := os.ReadFile(e.cgroupPath)
	if err != nil {
		return false
	}
	return strings.Contains(string(data), "docker")
}

// HostPath returns p unchanged unless the process runs inside a container
// that shares the host daemon. In that case p is translated through the
// current container's bind mounts so the daemon mounts the right host path.
func (e *BaseCLIEngine) HostPath(ctx context.Context, p string) (string, error) {
	if !e.InContainer() {
		return p, nil
	}
	binds, err := e.currentBinds(ctx)
	if err != nil {
		return "", err
	}
	return TranslatePath(p, binds)
}

// currentBinds maps container paths to host paths for the current container.
func (e *BaseCLIEngine) currentBinds(ctx context.Context) (map[string]string, error) {
	hostname, err := e.hostname()
	if err != nil {
		return nil, fmt.Errorf("resolve container hostname: %w", err)
	}
	out, err := e.RunCommandWithOutput(ctx, "inspect", hostname)
	if err != nil {
		return nil, fmt.Errorf("not running in a %s container: %w", e.name, err)
	}
	var containers []inspectedContainer
	if err := json.Unmarshal([]byte(out), &containers); err != nil {
		return nil, fmt.Errorf("decode %s inspect output: %w", e.name, err)
	}
	if len(containers) == 0 {
		return nil, fmt.Errorf("not running in a %s container: no container named %q", e.name, hostname)
	}

	binds := make(map[string]string, len(containers[0].HostConfig.Binds))
	for _, bind := range containers[0].HostConfig.Binds {
		parts := strings.Split(bind, ":")
		if len(parts) < 2 {
			continue
		}
		binds[parts[1]] = parts[0]
	}
	return binds, nil
}

// TranslatePath maps p through binds (container path to host path). The
// longest matching mount wins.
func TranslatePath(p string, binds map[string]string) (string, error) {
	best := ""
	for containerPath := range binds {
		if p != containerPath && !strings.HasPrefix(p, strings.TrimSuffix(containerPath, "/")+"/") {
			continue
		}
		if len(containerPath) > len(best) {
			best = containerPath
		}
	}
	if best == "" {
		return "", &PathNotBindMountedError{Path: p}
	}
	rel := strings.TrimPrefix(strings.TrimPrefix(p, best), "/")
	if rel == "" {
		return binds[best], nil
	}
	return path.Join(binds[best], rel), nil
}
