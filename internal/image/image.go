package image

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/tlsa/sgdk-helper/internal"
	"github.com/tlsa/sgdk-helper/internal/paths"
)

const (
	// Tag of the expensive base layer holding the cross toolchain.
	ToolchainTag = "sgdk-helper/toolchain:latest"

	// Tag of the cheap layer holding the remaining dependencies,
	// always built on the current toolchain image.
	ProjectTag = "sgdk-helper/project:latest"

	// Public image both layers ultimately derive from.
	baseImage = "docker.io/library/debian:bookworm-slim"

	// Upstream repository, recorded in the image annotations.
	source = "https://github.com/tlsa/sgdk-helper"
)

// Packages for the toolchain layer: enough to compile the cross
// toolchain and the dependency set from source.
var toolchainPackages = []string{
	"build-essential",
	"ca-certificates",
	"git",
	"libgmp-dev",
	"libmpc-dev",
	"libmpfr-dev",
	"texinfo",
}

// Packages for the project layer. SGDK's resource compiler runs on the
// JVM, so project builds need a runtime the toolchain layer does not.
var projectPackages = []string{
	"default-jre-headless",
}

// Definition of one container image layer.
type Definition struct {
	Tag    string            // Tag applied to the built image.
	Base   string            // Base image reference.
	Env    map[string]string // Environment baked into the image.
	Labels map[string]string // OCI annotations attached as labels.
	Copies []string          // "src dest" pairs from the build context.
	Runs   []string          // Shell commands, run after the copies.
}

// Renders the definition as a build instruction file.
func (d Definition) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "FROM %s\n", d.Base)

	if len(d.Labels) > 0 {
		b.WriteString("LABEL")
		for _, key := range slices.Sorted(maps.Keys(d.Labels)) {
			fmt.Fprintf(&b, " %s=%q", key, d.Labels[key])
		}
		b.WriteString("\n")
	}
	for _, key := range slices.Sorted(maps.Keys(d.Env)) {
		fmt.Fprintf(&b, "ENV %s=%q\n", key, d.Env[key])
	}
	for _, entry := range d.Copies {
		fmt.Fprintf(&b, "COPY %s\n", entry)
	}
	for _, run := range d.Runs {
		fmt.Fprintf(&b, "RUN %s\n", run)
	}
	return b.String()
}

// Returns the toolchain image definition.
//
// This layer is expensive: it compiles the cross toolchain from source
// by running this tool inside the image build, then deletes the source
// trees so they do not weigh the layer down.
func Toolchain(debug bool) Definition {
	return Definition{
		Tag:    ToolchainTag,
		Base:   baseImage,
		Env:    map[string]string{paths.EnvRoot: paths.ContainerRoot},
		Labels: annotations("Sega Mega Drive cross toolchain"),
		Copies: []string{internal.Name + " /usr/local/bin/" + internal.Name},
		Runs: []string{
			aptInstall(toolchainPackages),
			invocation(debug, "toolchain"),
			"rm -rf " + paths.ContainerRoot + "/src",
		},
	}
}

// Returns the project image definition, layered on the toolchain image.
func Project(debug bool) Definition {
	return Definition{
		Tag:    ProjectTag,
		Base:   ToolchainTag,
		Labels: annotations("Sega Mega Drive project build environment"),
		Runs: []string{
			aptInstall(projectPackages),
			invocation(debug, "deps"),
		},
	}
}

// Renders the recursive in-image invocation of this tool, forwarding
// debug tracing so command level tracing stays consistent across the
// image boundary.
func invocation(debug bool, command string) string {
	if debug {
		return fmt.Sprintf("%s -d %s", internal.Name, command)
	}
	return fmt.Sprintf("%s %s", internal.Name, command)
}

// Renders a package installation command that leaves no package list
// cache behind in the layer.
func aptInstall(packages []string) string {
	return "apt-get update && apt-get install -y --no-install-recommends " +
		strings.Join(packages, " ") +
		" && rm -rf /var/lib/apt/lists/*"
}

// OCI annotations identifying a layer and the tool version that built
// it.
func annotations(description string) map[string]string {
	return map[string]string{
		ocispec.AnnotationTitle:       internal.Name,
		ocispec.AnnotationDescription: description,
		ocispec.AnnotationVersion:     internal.Version(),
		ocispec.AnnotationSource:      source,
		ocispec.AnnotationCreated:     time.Now().UTC().Format(time.RFC3339),
	}
}
