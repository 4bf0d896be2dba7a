// Package build compiles fetched dependency sources into the shared
// output tree.
//
// Each dependency is built with its own tooling: an optional configure
// step, then make with the rule's goals, then installation of the
// declared outputs. Variant rules rebuild the same tree once per
// variant with a clean pass in between, since variants share build
// state. Builds run strictly in declaration order because earlier
// outputs land on the search path later builds resolve tools against.
//
// Example usage:
//
//	builder := build.New(cfg, run.Exec{})
//	if err := builder.BuildAll(ctx, table.Deps()); err != nil {
//	    return err
//	}
package build
