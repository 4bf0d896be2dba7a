// Package run executes external commands.
//
// Every external tool the module drives (git, make, the container
// engine) goes through the Runner interface, so callers can substitute
// a recording fake in tests.
package run
