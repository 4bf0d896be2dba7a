package cli

import (
	"context"
	"os"

	"github.com/tlsa/sgdk-helper/internal/dispatch"
	"github.com/tlsa/sgdk-helper/internal/engine"
	"github.com/tlsa/sgdk-helper/internal/image"
	"github.com/tlsa/sgdk-helper/internal/paths"
	"github.com/tlsa/sgdk-helper/internal/run"
)

// Represents the 'sgdk-helper build' command.
type BuildCmd struct {
	Args []string `arg:"" optional:"" help:"Targets forwarded to the project's build tool."`
}

// Executes the build command.
//
// The project in the current directory is built in the first ready
// environment: a container when an engine is installed, the host when
// its output trees exist, and otherwise setup guidance is printed.
func (c *BuildCmd) Run(ctx context.Context) error {
	dir, err := os.Getwd()
	if err != nil {
		return err
	}

	cfg, err := paths.Resolve()
	if err != nil {
		return err
	}

	runner := run.Exec{}

	var container dispatch.Executor
	if eng, err := engine.Detect(runner); err == nil {
		container = dispatch.NewContainer(eng, image.NewManager(eng, debugEnabled()))
	}

	d := dispatch.New(container, dispatch.NewNative(cfg, runner), os.Stdout)
	return d.Dispatch(ctx, dispatch.Request{
		Dir:         dir,
		Args:        c.Args,
		Debug:       debugEnabled(),
		Interactive: isatty(os.Stdin),
	})
}
