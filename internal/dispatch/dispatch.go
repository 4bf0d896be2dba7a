package dispatch

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/tlsa/sgdk-helper/internal"
)

// Request to build the project in a directory.
//
// Args pass through to the underlying build tool untouched; the
// request does not interpret them.
type Request struct {
	// Dir is the project directory.
	Dir string
	// Args are forwarded to the build tool.
	Args []string
	// Debug propagates command tracing into nested invocations.
	Debug bool
	// Interactive reports whether a terminal is attached, so container
	// runs can allocate one.
	Interactive bool
}

// Executor runs a build request in one environment.
type Executor interface {
	Execute(ctx context.Context, req Request) error
}

// Dispatcher routes a build request to the first ready environment.
//
// The decision is made once per invocation: a container engine wins
// when installed, the host is used when its output trees exist, and
// otherwise setup guidance is printed and no build runs.
type Dispatcher struct {
	container Executor
	native    *Native
	out       io.Writer
}

// Creates a dispatcher.
//
// A nil container executor means no container engine is installed.
func New(container Executor, native *Native, out io.Writer) *Dispatcher {
	return &Dispatcher{
		container: container,
		native:    native,
		out:       out,
	}
}

// Routes the request.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) error {
	if d.container != nil {
		slog.Debug("dispatching to container", "dir", req.Dir, "args", req.Args)
		return d.container.Execute(ctx, req)
	}
	if d.native != nil && d.native.Ready() {
		slog.Debug("dispatching to host", "dir", req.Dir, "args", req.Args)
		return d.native.Execute(ctx, req)
	}
	return d.guide()
}

// Explains how to make an environment ready.
//
// Deliberately not an error: an unprepared machine is a state the
// operator can fix, not a failed build.
func (d *Dispatcher) guide() error {
	_, err := fmt.Fprintf(d.out, guidance, internal.Name)
	return err
}

const guidance = `No build environment is ready yet. Either:

  container: install docker or podman, then run "%[1]s image" to
             prepare the build image, or

  native:    run "%[1]s toolchain" and "%[1]s deps" to build the
             dependencies onto this machine.

Then rerun the build.
`
