// Package dispatch routes a build request to whichever execution
// environment the machine offers.
//
// A container engine is preferred because it needs no host setup beyond
// the engine itself. A host with a built toolchain comes second. When
// neither is available the user gets setup guidance rather than an
// error; the decision is made once per invocation, not per target.
package dispatch
