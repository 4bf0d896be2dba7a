package cli

import (
	"context"
	"log/slog"

	"github.com/tlsa/sgdk-helper/internal/paths"
	"github.com/tlsa/sgdk-helper/internal/registry"
)

// Represents the 'sgdk-helper toolchain' command.
type ToolchainCmd struct{}

// Executes the toolchain command.
//
// Fetches and builds the m68k cross toolchain. This takes hours on
// first run; the container setup path runs it once inside the
// toolchain image build so the result is cached as an image layer.
func (c *ToolchainCmd) Run(ctx context.Context) error {
	cfg, err := paths.Resolve()
	if err != nil {
		return err
	}

	table, err := registry.Load()
	if err != nil {
		return err
	}

	if err := fetchAndBuild(ctx, cfg, table.Toolchain()); err != nil {
		return err
	}

	slog.Info("toolchain ready", "prefix", cfg.ToolchainDir())
	return nil
}
