// Package fetch retrieves dependency sources.
//
// Git dependencies are cloned without blob content, optionally
// restricted to a sparse allow-list, and advanced to their pinned ref
// on every run. Archive dependencies are downloaded conditionally,
// keyed on the remote's modification time, and unpacked in place.
// Every operation is safe to repeat; nothing is re-downloaded when the
// local copy is current.
package fetch
