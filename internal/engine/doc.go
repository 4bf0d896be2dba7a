// Package engine drives a container engine (docker or podman) through
// its command line interface.
//
// The two engines accept the same build and run arguments except for
// user identity mapping, which each handles its own way. Everything
// else in the module talks to this package rather than to an engine
// binary directly.
package engine
