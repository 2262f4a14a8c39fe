// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package runner executes build step scripts, either directly on the host or
// inside a docker or podman container that carries the LaTeX toolchain.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/pdiddy/pdfbuild/pkg/types"
)

const (
	binDocker = "docker"
	binPodman = "podman"

	// workMount is where the working directory appears inside a container.
	workMount = "/work"
)

// interruptGrace is how long a cancelled step may take to exit after
// SIGINT before it is killed.
var interruptGrace = 10 * time.Second

var (
	// ErrLaunch means the script could not be started at all: missing file,
	// no execute bit, bad interpreter line.
	ErrLaunch = errors.New("could not start")

	// ErrExit means the script ran and exited with a non-zero status.
	ErrExit = errors.New("exited non-zero")
)

// Invocation is one script execution.
type Invocation struct {
	// Path is the script to run. Relative paths resolve against Dir.
	Path string
	Args []string

	// Dir is the working directory. Empty means the current directory.
	Dir string

	Stdout io.Writer
	Stderr io.Writer
}

// Runner runs step scripts somewhere.
type Runner interface {
	// Name returns "host", "docker" or "podman".
	Name() string

	// Available reports whether the runner can execute anything at all.
	Available(ctx context.Context) bool

	// Run executes the invocation and waits for it. A failure wraps either
	// ErrLaunch or ErrExit.
	Run(ctx context.Context, inv Invocation) error
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunSilent(ctx context.Context, name string, args ...string) error
	Run(ctx context.Context, name string, args []string, dir string, stdout, stderr io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunSilent(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// Run interrupts the process on cancellation rather than killing it, so a
// docker or podman client can stop its container and a script can clean up.
// The process is killed if it is still running after interruptGrace.
func (o *osExecutor) Run(ctx context.Context, name string, args []string, dir string, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = interruptGrace
	return cmd.Run()
}

// hostRunner executes scripts directly.
type hostRunner struct {
	exec executor
}

func (h *hostRunner) Name() string { return string(types.RuntimeHost) }

func (h *hostRunner) Available(context.Context) bool { return true }

func (h *hostRunner) Run(ctx context.Context, inv Invocation) error {
	return classify(inv.Path, h.exec.Run(ctx, inv.Path, inv.Args, inv.Dir, inv.Stdout, inv.Stderr))
}

// containerRunner executes scripts inside an image with the working
// directory bind-mounted at /work. Docker and podman accept the same run
// flags, so they differ only in binary name.
type containerRunner struct {
	bin   string
	image string
	exec  executor
}

func (c *containerRunner) Name() string { return c.bin }

func (c *containerRunner) Available(ctx context.Context) bool {
	if _, err := c.exec.LookPath(c.bin); err != nil {
		return false
	}
	return c.exec.RunSilent(ctx, c.bin, "info") == nil
}

func (c *containerRunner) Run(ctx context.Context, inv Invocation) error {
	dir := inv.Dir
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("%s: %w: resolving work dir: %w", inv.Path, ErrLaunch, err)
	}

	args := make([]string, 0, 8+len(inv.Args))
	// --init forwards the client's SIGINT to the script inside.
	args = append(args, "run", "--rm", "--init",
		"-v", abs+":"+workMount,
		"-w", workMount,
		c.image, inv.Path)
	args = append(args, inv.Args...)

	return classify(inv.Path, c.exec.Run(ctx, c.bin, args, "", inv.Stdout, inv.Stderr))
}

func newHostRunner(exec executor) *hostRunner {
	return &hostRunner{exec: exec}
}

func newDockerRunner(exec executor, image string) *containerRunner {
	return &containerRunner{bin: binDocker, image: image, exec: exec}
}

func newPodmanRunner(exec executor, image string) *containerRunner {
	return &containerRunner{bin: binPodman, image: image, exec: exec}
}

var defaultExec = &osExecutor{}

// New returns the runner for kind. Container kinds must be operational;
// RuntimeAuto tries docker first and falls back to podman.
func New(ctx context.Context, kind types.RuntimeKind, image string) (Runner, error) {
	return newRunner(ctx, defaultExec, kind, image)
}

// Lookup returns the runner for kind without requiring it to be
// operational, so callers can report Available themselves. When
// RuntimeAuto finds neither docker nor podman it returns the docker runner.
func Lookup(ctx context.Context, kind types.RuntimeKind, image string) (Runner, error) {
	return lookup(ctx, defaultExec, kind, image)
}

func newRunner(ctx context.Context, exec executor, kind types.RuntimeKind, image string) (Runner, error) {
	r, err := lookup(ctx, exec, kind, image)
	if err != nil {
		return nil, err
	}
	if r.Available(ctx) {
		return r, nil
	}
	if kind == types.RuntimeAuto {
		return nil, fmt.Errorf(
			"no container runtime available: neither %s nor %s found or operational",
			binDocker, binPodman,
		)
	}
	return nil, fmt.Errorf("container runtime %s not found or not operational", r.Name())
}

func lookup(ctx context.Context, exec executor, kind types.RuntimeKind, image string) (Runner, error) {
	if image == "" {
		image = types.DefaultImage
	}

	switch kind {
	case "", types.RuntimeHost:
		return newHostRunner(exec), nil
	case types.RuntimeDocker:
		return newDockerRunner(exec, image), nil
	case types.RuntimePodman:
		return newPodmanRunner(exec, image), nil
	case types.RuntimeAuto:
		docker := newDockerRunner(exec, image)
		if docker.Available(ctx) {
			return docker, nil
		}
		podman := newPodmanRunner(exec, image)
		if podman.Available(ctx) {
			return podman, nil
		}
		return docker, nil
	default:
		return nil, fmt.Errorf("unknown runtime %q (want host, docker, podman or auto)", kind)
	}
}

// exitCoder is satisfied by *exec.ExitError.
type exitCoder interface {
	ExitCode() int
}

// classify wraps a run error with ErrExit when the process ran and exited,
// or ErrLaunch when it never started.
func classify(path string, err error) error {
	if err == nil {
		return nil
	}
	var ec exitCoder
	if errors.As(err, &ec) {
		return fmt.Errorf("%s: %w with status %d: %w", path, ErrExit, ec.ExitCode(), err)
	}
	return fmt.Errorf("%s: %w: %w", path, ErrLaunch, err)
}

// ExitCode extracts the exit status from a Run error: 0 for nil, the
// process status when it ran, and -1 when it never started.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ec exitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return -1
}
