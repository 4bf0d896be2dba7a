package cli

import (
	"context"
	"log/slog"

	"github.com/tlsa/sgdk-helper/internal/build"
	"github.com/tlsa/sgdk-helper/internal/fetch"
	"github.com/tlsa/sgdk-helper/internal/paths"
	"github.com/tlsa/sgdk-helper/internal/registry"
	"github.com/tlsa/sgdk-helper/internal/run"
)

// Represents the 'sgdk-helper deps' command.
type DepsCmd struct{}

// Executes the deps command.
//
// Fetches and builds the development dependencies (the assembler and
// the library) in declared order. Also runs recursively inside the
// project image build.
func (c *DepsCmd) Run(ctx context.Context) error {
	cfg, err := paths.Resolve()
	if err != nil {
		return err
	}

	table, err := registry.Load()
	if err != nil {
		return err
	}

	deps := table.Deps()
	if err := fetchAndBuild(ctx, cfg, deps); err != nil {
		return err
	}

	slog.Info("dependencies ready", "out", cfg.Out)
	return nil
}

// Fetches then builds the given dependencies, in order, fail-fast.
func fetchAndBuild(ctx context.Context, cfg paths.Config, deps []registry.Descriptor) error {
	runner := run.Exec{}

	if err := fetch.New(cfg, runner).FetchAll(ctx, deps); err != nil {
		return err
	}
	return build.New(cfg, runner).BuildAll(ctx, deps)
}
