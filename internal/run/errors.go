package run

import "errors"

// ErrStart indicates a command could not be started at all, as opposed
// to starting and exiting non-zero.
var ErrStart = errors.New("command failed to start")
