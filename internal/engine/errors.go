package engine

import "errors"

var (
	// ErrEngine indicates a container engine invocation failed.
	ErrEngine = errors.New("container engine error")

	// ErrNoEngine indicates no supported container engine is installed.
	ErrNoEngine = errors.New("no supported container engine found")
)
