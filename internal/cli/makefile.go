package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/tlsa/sgdk-helper/internal/makefile"
)

// Represents the 'sgdk-helper makefile' command.
type MakefileCmd struct {
	Force bool `help:"Overwrite an existing Makefile."`
}

// Executes the makefile command.
func (c *MakefileCmd) Run(ctx context.Context) error {
	dir, err := os.Getwd()
	if err != nil {
		return err
	}

	if err := makefile.Write(dir, c.Force); err != nil {
		return err
	}

	slog.Info("wrote wrapper", "file", makefile.FileName)
	return nil
}
