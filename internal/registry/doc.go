// Package registry declares the dependencies the tool manages.
//
// The table is static, embedded data: each entry names a dependency, where
// its source comes from (an HTTP archive or a pinned git ref, optionally
// sparse), and how it is built (configure arguments, make goals, variants,
// and the artifacts installed into the shared output tree). Load parses
// and validates the table once at startup; descriptors are immutable
// records from then on.
//
// Declaration order is build order. The table is the single place that
// encodes inter-dependency ordering, such as the cross assembler building
// before the devkit library that invokes it.
package registry
