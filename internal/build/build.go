package build

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/tlsa/sgdk-helper/internal/paths"
	"github.com/tlsa/sgdk-helper/internal/registry"
	"github.com/tlsa/sgdk-helper/internal/run"
)

// Builder compiles fetched dependency sources into the output tree.
type Builder struct {
	cfg    paths.Config
	runner run.Runner
	base   []string
}

// Creates a builder over the configured layout.
//
// The process environment is captured once here; build steps run in a
// copy of it with the output directories prepended to the search path.
func New(cfg paths.Config, runner run.Runner) *Builder {
	return &Builder{
		cfg:    cfg,
		runner: runner,
		base:   os.Environ(),
	}
}

// Builds every given dependency in declaration order.
//
// Order matters: earlier builds install tools onto the search path that
// later builds invoke, so the sequence must not be reordered or run in
// parallel. The first failure aborts the rest.
func (b *Builder) BuildAll(ctx context.Context, deps []registry.Descriptor) error {
	for _, dep := range deps {
		if err := b.Build(ctx, dep); err != nil {
			return err
		}
	}
	return nil
}

// Builds one dependency and installs its artifacts into the output tree.
func (b *Builder) Build(ctx context.Context, dep registry.Descriptor) error {
	slog.Info("building", "dep", dep.Name)

	state := newBuildState(b.cfg)
	state.apply(dep.Build.Env)

	dir := b.cfg.SourceDir(dep.Name)
	if dep.Build.Subdir != "" {
		dir = filepath.Join(dir, dep.Build.Subdir)
	}
	for _, path := range []string{dir, b.cfg.BinDir()} {
		if err := os.MkdirAll(path, paths.DefaultDirMode); err != nil {
			return fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
		}
	}

	if len(dep.Build.Configure) > 0 {
		if err := b.configure(ctx, dep, dir, state); err != nil {
			return err
		}
	}

	if len(dep.Build.Variants) == 0 {
		if err := b.make(ctx, dir, state, dep.Build.File, dep.Build.Goals); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrBuild, dep.Name, err)
		}
		return b.install(ctx, dep.Name, dir, dep.Build.Outputs)
	}

	for _, variant := range dep.Build.Variants {
		if err := b.buildVariant(ctx, dep, dir, state, variant); err != nil {
			return err
		}
	}
	return nil
}

// Builds one variant of a dependency.
//
// Variants share the dependency's build tree, so a clean pass runs
// first; a stale intermediate from one variant must not leak into
// another.
func (b *Builder) buildVariant(ctx context.Context, dep registry.Descriptor, dir string, state *buildState, variant registry.Variant) error {
	slog.Info("building variant", "dep", dep.Name, "variant", variant.Name)

	clean := append(assignments(dep.Build.Goals), "clean")
	if err := b.make(ctx, dir, state, dep.Build.File, clean); err != nil {
		return fmt.Errorf("%w: %s %s clean: %w", ErrBuild, dep.Name, variant.Name, err)
	}

	goals := append(append([]string(nil), dep.Build.Goals...), variant.Goals...)
	if err := b.make(ctx, dir, state, dep.Build.File, goals); err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrBuild, dep.Name, variant.Name, err)
	}

	return b.install(ctx, dep.Name, dir, variant.Outputs)
}

// Runs the source tree's configure script from the build directory, so
// object files land beside neither the sources nor another target's
// output.
func (b *Builder) configure(ctx context.Context, dep registry.Descriptor, dir string, state *buildState) error {
	script, err := filepath.Rel(dir, filepath.Join(b.cfg.SourceDir(dep.Name), "configure"))
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrBuild, dep.Name, err)
	}
	if !strings.Contains(script, string(filepath.Separator)) {
		script = "./" + script
	}

	args := state.expandAll(dep.Build.Configure)
	slog.Debug("configuring", "dep", dep.Name, "args", args)

	if err := b.exec(ctx, dir, state, script, args); err != nil {
		return fmt.Errorf("%w: %s configure: %w", ErrBuild, dep.Name, err)
	}
	return nil
}

// Runs make in the build directory with the rule's makefile and goals.
func (b *Builder) make(ctx context.Context, dir string, state *buildState, file string, goals []string) error {
	var args []string
	if file != "" {
		args = append(args, "-f", state.expand(file))
	}
	args = append(args, state.expandAll(goals)...)
	return b.exec(ctx, dir, state, "make", args)
}

// Runs a build tool attached to the terminal so its own diagnostics
// reach the operator untranslated.
func (b *Builder) exec(ctx context.Context, dir string, state *buildState, name string, args []string) error {
	res, err := b.runner.Run(ctx, run.Command{
		Path:   name,
		Args:   args,
		Dir:    dir,
		Env:    state.environ(b.base),
		Attach: true,
	})
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("%w: %s exited with code %d", ErrCommandFailed, name, res.ExitCode)
	}
	return nil
}

// Variable assignments among the goals, kept for clean passes so the
// makefile parses the same way it does when building.
func assignments(goals []string) []string {
	var out []string
	for _, goal := range goals {
		if strings.Contains(goal, "=") {
			out = append(out, goal)
		}
	}
	return out
}
