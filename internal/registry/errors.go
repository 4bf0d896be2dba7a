package registry

import "errors"

var (
	ErrInvalidTable = errors.New("invalid dependency table")
)
