package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/tlsa/sgdk-helper/internal/engine"
	"github.com/tlsa/sgdk-helper/internal/image"
	"github.com/tlsa/sgdk-helper/internal/run"
)

// Represents the 'sgdk-helper image' command.
type ImageCmd struct {
	Toolchain bool `help:"Rebuild the toolchain image even when it exists."`
}

// Executes the image command.
//
// Builds the project image, building the toolchain base first only
// when it is missing. An existing toolchain image is only rebuilt on
// explicit request, via --toolchain.
func (c *ImageCmd) Run(ctx context.Context) error {
	eng, err := engine.Detect(run.Exec{})
	if err != nil {
		// A machine without an engine is a state the operator can fix,
		// not a failed command.
		fmt.Fprintln(os.Stdout,
			"No supported container engine found. Install docker or podman, then rerun.")
		return nil
	}

	manager := image.NewManager(eng, debugEnabled())

	if c.Toolchain {
		if err := manager.BuildToolchain(ctx); err != nil {
			return err
		}
	}
	return manager.BuildProject(ctx)
}
