package image

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/tlsa/sgdk-helper/internal"
	"github.com/tlsa/sgdk-helper/internal/engine"
	"github.com/tlsa/sgdk-helper/internal/paths"
)

// Name of the instruction file inside a build context. Both supported
// engines accept this name without extra flags.
const instructionFile = "Dockerfile"

// Manager builds and caches the two layered images.
type Manager struct {
	engine     *engine.Engine
	debug      bool
	runtimeDir string
	executable func() (string, error)
}

// Creates a manager for the given engine.
//
// The debug flag is baked into the rendered build instructions so the
// recursive in-image invocations trace the same way this process does.
func NewManager(eng *engine.Engine, debug bool) *Manager {
	return &Manager{
		engine:     eng,
		debug:      debug,
		runtimeDir: paths.Runtime(),
		executable: os.Executable,
	}
}

// Ensures the toolchain image exists, building it only when absent.
//
// An existing toolchain image is never rebuilt implicitly; it holds
// hours of compilation. Use BuildToolchain to force a rebuild.
func (m *Manager) EnsureToolchain(ctx context.Context) error {
	exists, err := m.engine.ImageExists(ctx, ToolchainTag)
	if err != nil {
		return err
	}
	if exists {
		slog.Info("toolchain image present", "tag", ToolchainTag)
		return nil
	}
	return m.BuildToolchain(ctx)
}

// Builds the toolchain image unconditionally.
func (m *Manager) BuildToolchain(ctx context.Context) error {
	return m.build(ctx, Toolchain(m.debug), m.copyExecutable)
}

// Ensures the project image exists, building the whole chain when
// absent.
func (m *Manager) EnsureProject(ctx context.Context) error {
	exists, err := m.engine.ImageExists(ctx, ProjectTag)
	if err != nil {
		return err
	}
	if exists {
		slog.Debug("project image present", "tag", ProjectTag)
		return nil
	}
	return m.BuildProject(ctx)
}

// Builds the project image, ensuring its toolchain base exists first.
//
// The base is built at most once per call, and only when missing; the
// project layer itself always rebuilds.
func (m *Manager) BuildProject(ctx context.Context) error {
	if err := m.EnsureToolchain(ctx); err != nil {
		return err
	}
	return m.build(ctx, Project(m.debug), nil)
}

// Builds one image from a transient context directory.
//
// The instruction file and any context content are removed on every
// exit path. A failed engine build must not leave stray files under
// the runtime directory.
func (m *Manager) build(ctx context.Context, def Definition, populate func(dir string) error) error {
	dir := filepath.Join(m.runtimeDir, uuid.NewString())
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("%w: %w", ErrImage, err)
	}
	defer os.RemoveAll(dir)

	if populate != nil {
		if err := populate(dir); err != nil {
			return err
		}
	}

	file := filepath.Join(dir, instructionFile)
	if err := os.WriteFile(file, []byte(def.Render()), paths.DefaultFileMode); err != nil {
		return fmt.Errorf("%w: %w", ErrImage, err)
	}

	return m.engine.BuildImage(ctx, engine.BuildSpec{
		Tag:     def.Tag,
		Context: dir,
	})
}

// Copies the running executable into the build context, so the image
// build runs the same tool version recursively.
func (m *Manager) copyExecutable(dir string) error {
	self, err := m.executable()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrImage, err)
	}

	in, err := os.Open(self)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrImage, err)
	}
	defer in.Close()

	dest := filepath.Join(dir, internal.Name)
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o755)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrImage, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("%w: %w", ErrImage, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrImage, err)
	}
	return nil
}
