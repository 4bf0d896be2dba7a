package dispatch

import (
	"context"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/tlsa/sgdk-helper/internal/paths"
	"github.com/tlsa/sgdk-helper/internal/run"
)

// Native executes build requests with the host's own build tool.
type Native struct {
	cfg    paths.Config
	runner run.Runner
	base   []string
}

// Creates the host executor.
func NewNative(cfg paths.Config, runner run.Runner) *Native {
	return &Native{
		cfg:    cfg,
		runner: runner,
		base:   os.Environ(),
	}
}

// Reports whether the host is prepared: both the toolchain and the
// dependency binaries must have been built into the output tree.
func (n *Native) Ready() bool {
	for _, dir := range []string{n.cfg.ToolchainBin(), n.cfg.BinDir()} {
		if _, err := os.Stat(dir); err != nil {
			return false
		}
	}
	return true
}

// Executes the request by running make in the project directory, with
// the built tools leading the search path.
func (n *Native) Execute(ctx context.Context, req Request) error {
	res, err := n.runner.Run(ctx, run.Command{
		Path:   "make",
		Args:   req.Args,
		Dir:    req.Dir,
		Env:    n.environ(),
		Attach: true,
	})
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return &ExitError{Code: res.ExitCode}
	}
	return nil
}

// Build environment for a host run: the process environment with the
// output directories leading the search path and the library root
// published for the project's makefile.
func (n *Native) environ() []string {
	merged := make(map[string]string, len(n.base)+2)
	for _, kv := range n.base {
		if key, value, ok := strings.Cut(kv, "="); ok {
			merged[key] = value
		}
	}

	searchPath := n.cfg.BinDir() + string(os.PathListSeparator) + n.cfg.ToolchainBin()
	if current := merged["PATH"]; current != "" {
		searchPath += string(os.PathListSeparator) + current
	}
	merged["PATH"] = searchPath
	merged["GDK"] = n.cfg.SourceDir("sgdk")

	env := make([]string, 0, len(merged))
	for _, key := range slices.Sorted(maps.Keys(merged)) {
		env = append(env, key+"="+merged[key])
	}
	return env
}
