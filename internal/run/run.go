package run

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// Command describes a single external process invocation.
type Command struct {
	// Path is the program to run, resolved against PATH.
	Path string
	// Args are the program arguments, not including the program itself.
	Args []string
	// Dir is the working directory. Empty inherits the current directory.
	Dir string
	// Env is the full process environment. Nil inherits the parent
	// environment.
	Env []string
	// Attach connects the process to the terminal streams instead of
	// capturing its output.
	Attach bool
}

// Result of a completed command.
//
// A non-zero exit code is not treated as an error; the caller decides
// what it means.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runner executes external commands.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// Exec runs commands as child processes.
type Exec struct{}

// Runs the command and waits for it to finish.
func (Exec) Run(ctx context.Context, cmd Command) (*Result, error) {
	c := exec.CommandContext(ctx, cmd.Path, cmd.Args...)
	c.Dir = cmd.Dir
	c.Env = cmd.Env

	var stdout, stderr bytes.Buffer
	if cmd.Attach {
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
	} else {
		c.Stdout = &stdout
		c.Stderr = &stderr
	}

	if err := c.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%w: %s: %w", ErrStart, cmd.Path, err)
		}
	}

	return &Result{
		ExitCode: c.ProcessState.ExitCode(),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}, nil
}
