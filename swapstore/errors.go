package swapstore

import "fmt"

// ErrSwapNotFound is returned by Get for an unknown swap id.
type ErrSwapNotFound struct {
	ID string
}

func (e *ErrSwapNotFound) Error() string {
	return fmt.Sprintf("swapstore: no record for swap %s", e.ID)
}
