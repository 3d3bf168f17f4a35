// SPDX-License-Identifier: MPL-2.0

package language

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/invowk/precommit/internal/container"
)

const fakeDockerEnv = "PRE_COMMIT_FAKE_DOCKER"

// TestMain lets the test binary double as a fake docker CLI and a fake hook
// tool when re-executed with PRE_COMMIT_FAKE_DOCKER=1.
func TestMain(m *testing.M) {
	if os.Getenv(fakeDockerEnv) == "1" {
		os.Exit(fakeDocker(os.Args[1:]))
	}
	os.Exit(m.Run())
}

// fakeDocker appends each invocation to $FAKE_DOCKER_LOG and answers the
// subcommands the backends use.
func fakeDocker(args []string) int {
	if logPath := os.Getenv("FAKE_DOCKER_LOG"); logPath != "" {
		f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err == nil {
			fmt.Fprintln(f, strings.Join(args, " "))
			f.Close()
		}
	}
	if len(args) == 0 {
		return 2
	}

	switch args[0] {
	case "ps":
		if os.Getenv("FAKE_DOCKER_PS_FAIL") == "1" {
			fmt.Fprintln(os.Stderr, "Cannot connect to the Docker daemon")
			return 1
		}
		return 0
	case "build":
		if path := os.Getenv("FAKE_DOCKER_BUILD_CONTEXT"); path != "" {
			entries, _ := os.ReadDir(".")
			var names []string
			for _, e := range entries {
				names = append(names, e.Name())
			}
			_ = os.WriteFile(path, []byte(strings.Join(names, "\n")), 0o644)
		}
		if d, err := time.ParseDuration(os.Getenv("FAKE_DOCKER_BUILD_SLEEP")); err == nil {
			time.Sleep(d)
		}
		if os.Getenv("FAKE_DOCKER_BUILD_FAIL") == "1" {
			fmt.Println("Step 1/1 : FROM missing")
			return 1
		}
		if path := os.Getenv("FAKE_DOCKER_BUILD_DONE"); path != "" {
			_ = os.WriteFile(path, nil, 0o644)
		}
		return 0
	case "system":
		fmt.Print(os.Getenv("FAKE_DOCKER_INFO"))
		return 0
	case "run", "echo":
		for _, a := range args[1:] {
			fmt.Println(a)
		}
		return 0
	default:
		return 2
	}
}

type fakeDockerEnvironment struct {
	engine container.Engine
	log    string
	prefix string
	cwd    string
}

// newFakeDocker points a real CLI engine at a link to the test binary.
func newFakeDocker(t *testing.T) *fakeDockerEnvironment {
	t.Helper()
	tmp := t.TempDir()
	logPath := filepath.Join(tmp, "docker.log")
	t.Setenv(fakeDockerEnv, "1")
	t.Setenv("FAKE_DOCKER_LOG", logPath)
	t.Setenv("FAKE_DOCKER_PS_FAIL", "")
	t.Setenv("FAKE_DOCKER_BUILD_FAIL", "")
	t.Setenv("FAKE_DOCKER_INFO", "")
	t.Setenv("FAKE_DOCKER_BUILD_CONTEXT", "")
	t.Setenv("FAKE_DOCKER_BUILD_SLEEP", "")
	t.Setenv("FAKE_DOCKER_BUILD_DONE", "")

	prefix := filepath.Join(tmp, "repo-abc")
	cwd := filepath.Join(tmp, "work")
	for _, dir := range []string{prefix, cwd} {
		if err := os.Mkdir(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}

	// Rootless detection is memoized per binary path, so each test gets its
	// own path to the test binary.
	binary := filepath.Join(tmp, "docker")
	if err := os.Symlink(os.Args[0], binary); err != nil {
		t.Skipf("cannot link the test binary: %v", err)
	}
	engine := container.NewBaseCLIEngine(binary,
		container.WithName("docker"),
		container.WithCgroupPath(filepath.Join(tmp, "no-cgroup")),
	)
	return &fakeDockerEnvironment{engine: engine, log: logPath, prefix: prefix, cwd: cwd}
}

// invocations returns the logged invocations starting with sub.
func (f *fakeDockerEnvironment) invocations(t *testing.T, sub string) []string {
	t.Helper()
	data, err := os.ReadFile(f.log)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatal(err)
	}
	var out []string
	for line := range strings.Lines(string(data)) {
		line = strings.TrimSuffix(line, "\n")
		if line == sub || strings.HasPrefix(line, sub+" ") {
			out = append(out, line)
		}
	}
	return out
}

func (f *fakeDockerEnvironment) backend(opts ...DockerOption) *DockerBackend {
	all := append([]DockerOption{
		WithWorkingDir(func() (string, error) { return f.cwd, nil }),
		WithUserIDs(func() (int, int) { return 1000, 1001 }),
	}, opts...)
	return NewDockerBackend(f.engine, all...)
}
