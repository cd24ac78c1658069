package domain

import "fmt"

// ValidationError reports a missing or malformed field. Validation runs
// before any call to the planification service so a bad request never
// costs a round-trip.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports an operation against a task the planification
// service no longer knows about.
type NotFoundError struct {
	TaskID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("task %s not found", e.TaskID)
}

// RemoteError wraps a failed call to the planification service together
// with the intent of the original request, so the caller can decide to
// retry or discard. The board itself performs no automatic retry.
type RemoteError struct {
	Op     string
	TaskID string
	Err    error
}

func (e *RemoteError) Error() string {
	if e.TaskID == "" {
		return fmt.Sprintf("planification %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("planification %s task %s: %v", e.Op, e.TaskID, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }
