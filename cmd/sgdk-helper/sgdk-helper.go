package main

import (
	"errors"
	"log/slog"
	"os"

	"github.com/tlsa/sgdk-helper/internal"
	"github.com/tlsa/sgdk-helper/internal/cli"
	"github.com/tlsa/sgdk-helper/internal/dispatch"
	"github.com/tlsa/sgdk-helper/internal/logging"
)

// The entry point for the sgdk-helper tool.
//
// Initializes logging, displays startup information, and executes the root
// command. A failed child build tool sets the exit code directly; any other
// error exits with code 1.
func main() {
	slog.SetDefault(logger())

	slog.Debug("build", "version", internal.VersionString())

	slog.Debug("sgdk-helper is running",
		"pid", os.Getpid(),
		"cwd", cwd(),
		"args", os.Args,
	)

	if err := cli.Execute(); err != nil {
		var exit *dispatch.ExitError
		if errors.As(err, &exit) {
			// The child already reported its own diagnostics; its exit
			// code becomes this invocation's, untranslated.
			os.Exit(exit.Code)
		}
		slog.Error(err.Error())
		os.Exit(1)
	}
}

// Creates a buffered logger seeded from build-time linker flags.
//
// The logger is reconfigured after flag parsing via cli.Execute.
func logger() *slog.Logger {
	handler := logging.NewHandler(os.Stderr)
	handler.SetLevel(logLevel())
	return slog.New(handler)
}

// Returns the log level derived from build-time linker flags.
func logLevel() slog.Level {
	if internal.IsDebug() {
		return slog.LevelDebug
	}
	if internal.IsQuiet() {
		return slog.LevelWarn
	}
	return slog.LevelInfo
}

// Returns the current working directory or "(unknown)".
func cwd() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "(unknown)"
	}
	return cwd
}
