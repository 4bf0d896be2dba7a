// Terminal-oriented slog handler for the sgdk-helper CLI.
//
// Records render as single lines: a level marker, the message, and
// key=value attributes. Markers and attributes are colored when the output
// stream is a terminal. A freshly created handler buffers records until
// Flush is called, so anything logged before flag parsing completes is
// rendered with the final level and verbosity settings.
package logging
