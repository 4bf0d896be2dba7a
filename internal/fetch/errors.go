package fetch

import "errors"

var (
	// ErrFetch indicates retrieving a dependency's source failed.
	ErrFetch = errors.New("fetch failed")

	// ErrDigest indicates downloaded content did not match the digest
	// pinned in the dependency table.
	ErrDigest = errors.New("digest mismatch")
)
