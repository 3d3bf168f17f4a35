// SPDX-License-Identifier: MPL-2.0

package language

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/invowk/precommit/internal/container"
	"github.com/invowk/precommit/internal/hook"
	"github.com/invowk/precommit/internal/issue"
	"github.com/invowk/precommit/internal/xargs"
)

const (
	// dockerEnvironmentName names the environment directory inside the prefix.
	dockerEnvironmentName = "docker"
	// ProvenanceLabel marks every image built for a hook.
	ProvenanceLabel = "PRE_COMMIT"
	// SourceMount is where the working directory is mounted in hook containers.
	SourceMount container.MountTargetPath = "/src"
)

type (
	// DockerOption configures the container-based backends.
	DockerOption func(*containerRunner)

	// containerRunner holds what the docker and docker_image backends share:
	// the engine, the run prefix and batch execution.
	containerRunner struct {
		engine      container.Engine
		logger      *log.Logger
		concurrency int
		getwd       func() (string, error)
		ids         func() (uid, gid int)
	}

	// DockerBackend builds an image from the hook repository and runs each
	// batch of files in a throwaway container of that image.
	DockerBackend struct {
		containerRunner
	}
)

// WithDockerLogger sets the backend logger.
func WithDockerLogger(logger *log.Logger) DockerOption {
	return func(r *containerRunner) { r.logger = logger }
}

// WithDockerConcurrency sets how many batches run at once.
func WithDockerConcurrency(n int) DockerOption {
	return func(r *containerRunner) { r.concurrency = n }
}

// WithWorkingDir overrides how the directory mounted at /src is resolved.
func WithWorkingDir(getwd func() (string, error)) DockerOption {
	return func(r *containerRunner) { r.getwd = getwd }
}

// WithUserIDs overrides the ids passed with -u. Negative ids suppress the flag.
func WithUserIDs(ids func() (uid, gid int)) DockerOption {
	return func(r *containerRunner) { r.ids = ids }
}

func newContainerRunner(engine container.Engine, opts []DockerOption) containerRunner {
	r := containerRunner{
		engine:      engine,
		logger:      log.Default(),
		concurrency: 1,
		getwd:       os.Getwd,
		ids:         func() (int, int) { return os.Getuid(), os.Getgid() },
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// NewDockerBackend creates the docker backend on top of engine.
func NewDockerBackend(engine container.Engine, opts ...DockerOption) *DockerBackend {
	return &DockerBackend{containerRunner: newContainerRunner(engine, opts)}
}

// DockerTag is the image tag for a hook repository.
func DockerTag(prefix string) container.ImageTag {
	return container.ImageTag("pre-commit-" + strings.ToLower(IdentityKey(prefix)))
}

func (b *DockerBackend) Kind() Kind             { return KindDocker }
func (b *DockerBackend) DefaultVersion() string { return DefaultVersion }

// EnvironmentPath returns the environment directory inside the hook repository.
func (b *DockerBackend) EnvironmentPath(spec EnvironmentSpec) string {
	return EnvironmentDir(spec.Prefix, dockerEnvironmentName, spec.Version)
}

// Healthy reports whether the environment directory exists.
func (b *DockerBackend) Healthy(env *Environment) bool {
	return env != nil && env.Dir != "" && dirExists(env.Dir)
}

// InstallEnvironment validates the spec, checks the daemon and builds the
// hook image with a fresh pull. The environment directory is created only
// after the build succeeds. An existing directory means the environment was
// already installed and nothing is rebuilt.
func (b *DockerBackend) InstallEnvironment(ctx context.Context, spec EnvironmentSpec) (*Environment, error) {
	if err := AssertVersionDefault(KindDocker, spec.Version); err != nil {
		return nil, err
	}
	if err := AssertNoAdditionalDeps(KindDocker, spec.AdditionalDependencies); err != nil {
		return nil, err
	}
	if err := b.assertDaemon(ctx); err != nil {
		return nil, err
	}

	env := &Environment{
		Key:     IdentityKey(spec.Prefix),
		Kind:    KindDocker,
		Version: spec.Version,
		Dir:     b.EnvironmentPath(spec),
		Status:  StatusBuilt,
	}
	if dirExists(env.Dir) {
		return env, nil
	}

	b.logger.Info("Initializing environment", "prefix", spec.Prefix)
	err := provisionDir(env.Dir, func() error {
		return b.buildImage(ctx, spec.Prefix, true)
	})
	if err != nil {
		return nil, err
	}
	return env, nil
}

// RunHook rebuilds the image without pulling, in case it was garbage
// collected since installation, then runs the hook's entry point in a
// container for each batch of files.
func (b *DockerBackend) RunHook(ctx context.Context, h *hook.Hook, fileArgs []string, color bool) (*xargs.Result, error) {
	if err := b.assertDaemon(ctx); err != nil {
		return nil, err
	}
	if err := b.buildImage(ctx, h.Prefix(), false); err != nil {
		return nil, err
	}

	cmd, err := h.Cmd()
	if err != nil {
		return nil, issue.NewFatalError(err)
	}
	prefix, err := b.runPrefix(ctx, container.RunOptions{
		Entrypoint: cmd[0],
		Image:      DockerTag(h.Prefix()),
		Command:    cmd[1:],
	})
	if err != nil {
		return nil, err
	}
	return b.run(ctx, h, prefix, fileArgs, color)
}

func (b *DockerBackend) buildImage(ctx context.Context, prefix string, pull bool) error {
	b.logger.Debug("building hook image", "prefix", prefix, "pull", pull)
	err := b.engine.Build(ctx, container.BuildOptions{
		ContextDir: container.HostFilesystemPath(prefix),
		Tag:        DockerTag(prefix),
		Labels:     []string{ProvenanceLabel},
		Pull:       pull,
	})
	if ctx.Err() != nil {
		return issue.NewInterruptedError(nil, context.Cause(ctx))
	}
	return err
}

// assertDaemon fails fatally when the daemon does not answer.
func (r *containerRunner) assertDaemon(ctx context.Context) error {
	if err := r.engine.Ping(ctx); err != nil {
		if ctx.Err() != nil {
			return issue.NewInterruptedError(nil, context.Cause(ctx))
		}
		r.logger.Debug("daemon ping failed", "engine", r.engine.Name(), "err", err)
		return issue.Fatalf("%s is either not running or not configured in this environment", displayName(r.engine.Name())).
			WithIssue(issue.DaemonNotRunningId)
	}
	return nil
}

// runPrefix completes opts into the full argv prefix of a hook container
// run: auto-removal, the invoking user's ids unless the daemon is rootless,
// and the working directory mounted read-write at /src.
func (r *containerRunner) runPrefix(ctx context.Context, opts container.RunOptions) ([]string, error) {
	cwd, err := r.getwd()
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}
	hostPath, err := r.engine.HostPath(ctx, cwd)
	if err != nil {
		if errors.Is(err, container.ErrPathNotBindMounted) {
			return nil, issue.NewFatalError(err).WithIssue(issue.BindMountNotFoundId)
		}
		return nil, err
	}

	opts.Remove = true
	opts.User = r.user(ctx)
	opts.Volumes = []container.VolumeMount{{
		HostPath:      container.HostFilesystemPath(hostPath),
		ContainerPath: SourceMount,
		SELinux:       container.SELinuxLabelPrivate,
	}}
	opts.WorkDir = SourceMount

	return append([]string{r.engine.BinaryPath()}, r.engine.RunArgs(opts)...), nil
}

// user returns "uid:gid" for rootful daemons, or "" when no -u flag applies.
func (r *containerRunner) user(ctx context.Context) string {
	if r.engine.Rootless(ctx) {
		return ""
	}
	uid, gid := r.ids()
	if uid < 0 || gid < 0 {
		return ""
	}
	return fmt.Sprintf("%d:%d", uid, gid)
}

func (r *containerRunner) run(ctx context.Context, h *hook.Hook, prefix, fileArgs []string, color bool) (*xargs.Result, error) {
	return xargs.Run(ctx, prefix, fileArgs,
		xargs.WithColor(color),
		xargs.WithConcurrency(targetConcurrency(h, r.concurrency)),
		xargs.WithLogger(r.logger),
	)
}

func displayName(engine string) string {
	if engine == "" {
		return "Docker"
	}
	return strings.ToUpper(engine[:1]) + engine[1:]
}
