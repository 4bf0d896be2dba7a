package makefile

import "errors"

var (
	// ErrExists reports a wrapper write that would overwrite a file.
	ErrExists = errors.New("file already exists")
)
