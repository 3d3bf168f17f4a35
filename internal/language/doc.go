// SPDX-License-Identifier: MPL-2.0

// Package language provides the environment backends hooks run in.
//
// Each backend implements Backend for one language kind: it reports its
// default version, checks environment health, provisions environments and
// runs hooks through the xargs batch executor. The Registry dispatches by
// kind and the Installer guarantees that at most one provisioning runs per
// environment per process.
//
// The docker backend builds an image from the hook repository and runs each
// batch in a throwaway container. The docker_image, system, script and pcre
// backends have no environment to provision.
package language
