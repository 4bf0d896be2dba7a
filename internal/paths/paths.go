package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (

	// Name used for directory and file naming.
	appName = "sgdk-helper"

	// Environment variable selecting the dependency root directory.
	EnvRoot = "SGDK_HELPER_DIR"

	// Root directory used when the environment variable is unset,
	// relative to the working directory.
	DefaultRoot = "sgdk"

	// Path the project directory is bind-mounted at inside containers.
	MountPoint = "/project"

	// Dependency root baked into the container images.
	ContainerRoot = "/opt/sgdk"

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for files.
	DefaultFileMode os.FileMode = 0644
)

// Resolved filesystem layout for fetched sources and built artifacts.
//
// The zero value is not usable; construct via [Resolve] or [FromRoot] and
// thread the value through constructors. Components never read the
// environment themselves.
type Config struct {
	Root string // Dependency root directory.
	Src  string // Fetched sources, one subdirectory per dependency.
	Out  string // Built artifacts shared by all dependencies.
}

// Resolves the layout from the environment, once, at startup.
//
// SGDK_HELPER_DIR overrides the root; otherwise the default root is used,
// relative to the working directory. The result is absolute so later
// directory changes cannot move the tree.
func Resolve() (Config, error) {
	root := os.Getenv(EnvRoot)
	if root == "" {
		root = DefaultRoot
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return Config{}, err
	}

	return FromRoot(abs), nil
}

// Returns the layout rooted at the given directory.
func FromRoot(root string) Config {
	return Config{
		Root: root,
		Src:  filepath.Join(root, "src"),
		Out:  filepath.Join(root, "out"),
	}
}

// Returns the source directory for a named dependency.
func (c Config) SourceDir(name string) string {
	return filepath.Join(c.Src, name)
}

// Returns the directory holding built dependency binaries.
func (c Config) BinDir() string {
	return filepath.Join(c.Out, "bin")
}

// Returns the cross toolchain's install prefix.
func (c Config) ToolchainDir() string {
	return filepath.Join(c.Out, "toolchain")
}

// Returns the cross toolchain's binary directory.
func (c Config) ToolchainBin() string {
	return filepath.Join(c.Out, "toolchain", "bin")
}

// Path to the directory for transient files (image build contexts).
//
//	Linux:   $XDG_RUNTIME_DIR/sgdk-helper or /run/user/<uid>/sgdk-helper
//	macOS:   ~/Library/Caches/sgdk-helper/run
func Runtime() string {
	if xdg.RuntimeDir != "" {
		return filepath.Join(xdg.RuntimeDir, appName)
	}
	return filepath.Join(xdg.CacheHome, appName, "run")
}
