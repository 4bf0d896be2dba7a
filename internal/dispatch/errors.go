package dispatch

import "fmt"

// ExitError carries a build tool's non-zero exit code to the process
// boundary unchanged.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}
