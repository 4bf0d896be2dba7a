package cli

import (
	"context"
	"fmt"

	"github.com/tlsa/sgdk-helper/internal"
)

// Represents the 'sgdk-helper version' command.
type VersionCmd struct{}

// Executes the version command.
func (c *VersionCmd) Run(ctx context.Context) error {
	fmt.Println(internal.VersionString())
	return nil
}
