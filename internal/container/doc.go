// SPDX-License-Identifier: MPL-2.0

// Package container drives the Docker and Podman command-line clients.
//
// The Engine interface covers what hook environments need from a container
// runtime: a daemon ping, image builds, construction of the `run` argument
// vector that prefixes every hook batch, rootless detection and translation of
// bind-mount sources when the tool itself runs inside a container. DockerEngine
// and PodmanEngine both embed BaseCLIEngine, which implements the shared
// argument building and command execution. Engine commands are not killed
// when their context is cancelled; callers check the context once they exit.
//
// Engines are created with NewEngine(EngineType). No fallback between engines
// is attempted: a missing or stopped daemon surfaces on the first Ping.
package container
