package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/tlsa/sgdk-helper/internal"
	"github.com/tlsa/sgdk-helper/internal/logging"
)

// Represents the root command for the sgdk-helper tool.
var RootCmd struct {
	Quiet   bool `short:"q" help:"Suppress informational output."`
	Verbose bool `short:"v" help:"Enable verbose output."`
	Debug   bool `short:"d" help:"Enable debug output, propagated into nested invocations."`

	Build     BuildCmd     `cmd:"" help:"Build the project in the current directory."`
	Deps      DepsCmd      `cmd:"" help:"Fetch and build the development dependencies."`
	Toolchain ToolchainCmd `cmd:"" help:"Fetch and build the m68k cross toolchain."`
	Image     ImageCmd     `cmd:"" help:"Build the container images."`
	Makefile  MakefileCmd  `cmd:"" help:"Write a wrapper Makefile for the project."`
	Version   VersionCmd   `cmd:"" help:"Show version information."`
}

// Parses arguments, configures logging, and runs the selected subcommand.
func Execute() error {

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kongCtx := kong.Parse(&RootCmd,
		kong.Name(internal.Name),
		kong.Description("Builds Sega Mega Drive projects with SGDK.\n\nFetches and builds the cross toolchain and development dependencies, prepares layered container images, and routes project builds to whichever prepared environment the machine offers."),
		kong.UsageOnError(),
		kong.Vars{
			"version": internal.VersionString(),
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	configureLogger()

	return kongCtx.Run()
}

// Whether debug tracing is on, by flag or build-time default.
//
// Debug reaches further than the log level: nested invocations of the
// tool, including those inside containers, are re-invoked with -d.
func debugEnabled() bool {
	return RootCmd.Debug || internal.IsDebug()
}

// Configures the global logger based on CLI flags.
func configureLogger() {
	handler, ok := slog.Default().Handler().(*logging.Handler)
	if !ok {
		return // Not this tool's handler, nothing to configure
	}

	debug := debugEnabled()
	quiet := RootCmd.Quiet || internal.IsQuiet()
	verbose := RootCmd.Verbose || internal.IsVerbose()

	if debug {
		handler.SetLevel(slog.LevelDebug)
	} else if quiet {
		handler.SetLevel(slog.LevelWarn)
	} else {
		handler.SetLevel(slog.LevelInfo)
	}

	// Commit
	handler.SetColor(isatty(os.Stderr))
	handler.SetVerbose(verbose)
	handler.SetStream(os.Stderr)
	handler.Flush()
}

// Whether the given file is an interactive terminal.
func isatty(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
