package internal

import (
	"fmt"
	"runtime"
	"strings"
)

// Name of the tool, used for the binary, log output, and image tags.
const Name = "sgdk-helper"

const (

	// Placeholder for build-time variables that were never set.
	undefinedLabel = "(undefined)"

	// Version string reported by builds made outside the release pipeline.
	localLabel = "(local)"

	// Branch omitted from version strings.
	mainBranch = "main"
)

var (
	version   = "" // Release version (e.g., "0.4.1")
	stage     = "" // Git branch the build was made from (e.g., "main")
	gitCommit = "" // Short commit hash (e.g., "a1b2c3d4")

	rawQuiet   = "false" // Build-time default for quiet mode
	rawDebug   = "false" // Build-time default for debug mode
	rawVerbose = "false" // Build-time default for verbose logging
)

// Returns the release version.
//
// A "v" or "V" prefix is stripped (so "v1.0.0" reports as "1.0.0"). Returns
// "(undefined)" when the version was not set at build time.
func Version() string {
	v := strings.TrimSpace(version)
	if v == "" {
		return undefinedLabel
	}
	return strings.TrimPrefix(strings.ToLower(v), "v")
}

// Returns the branch the build was made from, or "(undefined)".
func Stage() string {
	s := strings.TrimSpace(stage)
	if s == "" {
		return undefinedLabel
	}
	return strings.ToLower(s)
}

// Returns the git commit hash, or "(undefined)".
func GitCommit() string {
	c := strings.TrimSpace(gitCommit)
	if c == "" {
		return undefinedLabel
	}
	return c
}

// Returns the build architecture.
func Arch() string {
	return runtime.GOARCH
}

// Returns true for builds made outside the release pipeline.
//
// Pipeline builds set version, stage, and commit via linker flags; a build
// missing any of the three is treated as local.
func IsLocal() bool {
	return strings.TrimSpace(version) == "" ||
		strings.TrimSpace(stage) == "" ||
		strings.TrimSpace(gitCommit) == ""
}

// Returns a detailed version string.
//
// Local builds report "(local)". Pipeline builds report
// "<version>+<stage> <git-commit> [<arch>]", with the "+<stage>" part
// omitted on the main branch.
func VersionString() string {
	if IsLocal() {
		return localLabel
	}

	s := Stage()
	if s == mainBranch {
		s = ""
	} else {
		s = "+" + s
	}

	return fmt.Sprintf("%s%s %s [%s]", Version(), s, GitCommit(), Arch())
}
