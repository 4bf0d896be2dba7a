package dispatch

import (
	"context"

	"github.com/google/uuid"

	"github.com/tlsa/sgdk-helper/internal"
	"github.com/tlsa/sgdk-helper/internal/engine"
	"github.com/tlsa/sgdk-helper/internal/image"
	"github.com/tlsa/sgdk-helper/internal/paths"
)

// Container executes build requests inside the project image.
type Container struct {
	engine  *engine.Engine
	manager *image.Manager
}

// Creates the containerized executor.
func NewContainer(eng *engine.Engine, manager *image.Manager) *Container {
	return &Container{
		engine:  eng,
		manager: manager,
	}
}

// Executes the request in a fresh container, building the image chain
// first when it is missing.
//
// The project directory is bind mounted at a fixed path and this tool
// re-invokes itself inside the container with the original arguments,
// so the container side takes the native path against the baked-in
// dependency root.
func (c *Container) Execute(ctx context.Context, req Request) error {
	if err := c.manager.EnsureProject(ctx); err != nil {
		return err
	}

	args := []string{internal.Name}
	if req.Debug {
		args = append(args, "-d")
	}
	args = append(args, "build")
	args = append(args, req.Args...)

	code, err := c.engine.RunContainer(ctx, engine.RunSpec{
		Image:       image.ProjectTag,
		Name:        internal.Name + "-" + uuid.NewString(),
		HostDir:     req.Dir,
		MountPoint:  paths.MountPoint,
		Env:         map[string]string{paths.EnvRoot: paths.ContainerRoot},
		Args:        args,
		Interactive: req.Interactive,
	})
	if err != nil {
		return err
	}
	if code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}
