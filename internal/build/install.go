package build

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tlsa/sgdk-helper/internal/paths"
	"github.com/tlsa/sgdk-helper/internal/registry"
	"github.com/tlsa/sgdk-helper/internal/run"
)

// Installs build outputs into the shared output tree.
func (b *Builder) install(ctx context.Context, dep, dir string, outputs []registry.Output) error {
	for _, out := range outputs {
		src := filepath.Join(dir, out.Source)
		dest := filepath.Join(b.cfg.Out, out.Dest)
		slog.Debug("installing", "dep", dep, "src", out.Source, "dest", out.Dest)

		if out.Strip {
			if err := b.strip(ctx, src); err != nil {
				return fmt.Errorf("%w: %s: %w", ErrBuild, dep, err)
			}
		}
		if err := copyPath(src, dest); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrFileSystemOperation, dep, err)
		}
	}
	return nil
}

// Discards debug symbols before a binary is installed. Purely a size
// reduction; the binary works either way.
func (b *Builder) strip(ctx context.Context, path string) error {
	res, err := b.runner.Run(ctx, run.Command{
		Path:   "strip",
		Args:   []string{path},
		Attach: true,
	})
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("%w: strip exited with code %d", ErrCommandFailed, res.ExitCode)
	}
	return nil
}

// Copies a file or directory tree into the output tree.
func copyPath(src, dest string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return copyTree(src, dest)
	}
	return copyFile(src, dest, info.Mode())
}

// Copies a single file, creating parent directories and preserving the
// source permission bits so installed tools stay executable.
func copyFile(src, dest string, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(dest), paths.DefaultDirMode); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	// The open mode only applies on creation; reinstalls keep the
	// source permissions too.
	return os.Chmod(dest, mode.Perm())
}

// Copies a directory tree rooted at dest.
func copyTree(src, dest string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)

		if d.IsDir() {
			return os.MkdirAll(target, paths.DefaultDirMode)
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		return copyFile(path, target, info.Mode())
	})
}
