package engine

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"os/exec"
	"slices"

	"github.com/tlsa/sgdk-helper/internal/run"
)

// Engines probed by Detect, in order of preference.
var probeOrder = []string{"docker", "podman"}

// Engine drives a container engine through its command line interface.
type Engine struct {
	name   string
	uid    int
	gid    int
	runner run.Runner
}

// Detects an installed container engine.
//
// Returns ErrNoEngine when none of the supported engines is on PATH.
func Detect(runner run.Runner) (*Engine, error) {
	for _, name := range probeOrder {
		if _, err := exec.LookPath(name); err != nil {
			slog.Debug("container engine not found", "engine", name)
			continue
		}
		slog.Debug("container engine detected", "engine", name)
		return New(name, runner), nil
	}
	return nil, ErrNoEngine
}

// Creates an engine driver for the named engine binary.
func New(name string, runner run.Runner) *Engine {
	return &Engine{
		name:   name,
		uid:    os.Getuid(),
		gid:    os.Getgid(),
		runner: runner,
	}
}

// Returns the engine binary name.
func (e *Engine) Name() string {
	return e.name
}

// Reports whether an image with the given tag exists locally.
func (e *Engine) ImageExists(ctx context.Context, tag string) (bool, error) {
	res, err := e.runner.Run(ctx, run.Command{
		Path: e.name,
		Args: []string{"image", "inspect", tag},
	})
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrEngine, err)
	}
	return res.ExitCode == 0, nil
}

// BuildSpec describes an image build.
type BuildSpec struct {
	// Tag to apply to the built image.
	Tag string
	// Context is the directory holding the build instruction file.
	Context string
}

// Builds an image, streaming engine output to the terminal.
func (e *Engine) BuildImage(ctx context.Context, spec BuildSpec) error {
	slog.Info("building image", "engine", e.name, "tag", spec.Tag)
	res, err := e.runner.Run(ctx, run.Command{
		Path:   e.name,
		Args:   []string{"build", "--tag", spec.Tag, spec.Context},
		Attach: true,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEngine, err)
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("%w: build of %s exited with code %d",
			ErrEngine, spec.Tag, res.ExitCode)
	}
	return nil
}

// RunSpec describes a container run.
type RunSpec struct {
	// Image to run.
	Image string
	// Name for the container. Empty lets the engine pick one.
	Name string
	// HostDir is bind mounted at MountPoint, which also becomes the
	// working directory.
	HostDir    string
	MountPoint string
	// Env is set inside the container.
	Env map[string]string
	// Args are the command and arguments to run inside the container.
	Args []string
	// Interactive allocates a terminal for the container.
	Interactive bool
}

// Runs a container to completion and returns its exit code.
//
// The exit code is data, not an error, so that failures inside the
// container propagate to the caller unchanged.
func (e *Engine) RunContainer(ctx context.Context, spec RunSpec) (int, error) {
	args := e.runArgs(spec)
	slog.Debug("running container", "engine", e.name, "args", args)
	res, err := e.runner.Run(ctx, run.Command{
		Path:   e.name,
		Args:   args,
		Attach: true,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrEngine, err)
	}
	return res.ExitCode, nil
}

func (e *Engine) runArgs(spec RunSpec) []string {
	args := []string{"run", "--rm"}
	if spec.Name != "" {
		args = append(args, "--name", spec.Name)
	}
	if spec.Interactive {
		args = append(args, "--interactive", "--tty")
	}
	args = append(args, e.userArgs()...)
	args = append(args,
		"--volume", spec.HostDir+":"+spec.MountPoint,
		"--workdir", spec.MountPoint)
	for _, key := range slices.Sorted(maps.Keys(spec.Env)) {
		args = append(args, "--env", key+"="+spec.Env[key])
	}
	args = append(args, spec.Image)
	return append(args, spec.Args...)
}

// Maps the host user into the container so that files written to the
// bind mount keep the caller's ownership.
func (e *Engine) userArgs() []string {
	if e.name == "podman" {
		// Rootless podman already runs as the host user; keep-id
		// preserves that identity inside the user namespace.
		return []string{"--userns=keep-id"}
	}
	return []string{"--user", fmt.Sprintf("%d:%d", e.uid, e.gid)}
}
