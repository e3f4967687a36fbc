package game

import "fmt"

// InvariantViolation reports a desynchronization between the connection
// layer and the game loop. It is raised with panic, never returned.
type InvariantViolation struct {
	Reason string
}

func (e *InvariantViolation) Error() string {
	return "invariant violation: " + e.Reason
}

func invariantViolation(format string, args ...interface{}) {
	panic(&InvariantViolation{Reason: fmt.Sprintf(format, args...)})
}
