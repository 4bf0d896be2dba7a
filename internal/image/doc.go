// Package image builds and caches the two layered container images.
//
// The toolchain image is the expensive base layer: it compiles the
// cross toolchain from source by running this tool inside the image
// build. The project image is a cheap layer on top that adds project
// tooling and prebuilt dependencies. Building the project image first
// ensures the toolchain image exists, but an existing toolchain image
// is never rebuilt implicitly.
//
// Each build renders its instruction file into a transient context
// directory that is removed when the build finishes, whatever the
// outcome.
package image
