package workflow

import "fmt"

// InvalidTransitionError reports an attempt to move an entity between states
// its machine does not connect, or to mutate it in a frozen state. It marks
// workflow misuse and must not be retried.
type InvalidTransitionError struct {
	Entity string
	ID     string
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: %s %s cannot go from %s to %s", e.Entity, e.ID, e.From, e.To)
}

// ConstraintViolationError reports that approving a scheduling request would
// break a conflict or hard constraint. The request stays pending; review can
// be retried after the blocking schedule changes.
type ConstraintViolationError struct {
	RequestID string
	Cause     error
}

func (e *ConstraintViolationError) Error() string {
	return fmt.Sprintf("request %s cannot be applied: %v", e.RequestID, e.Cause)
}

func (e *ConstraintViolationError) Unwrap() error { return e.Cause }
