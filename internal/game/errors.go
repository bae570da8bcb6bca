package game

import "fmt"

// ValidationError marks malformed or out-of-range command input. The
// operation is rejected and no state changes.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ConflictError marks a request that clashes with current state, such as
// entering a floor while an encounter is already open. State is unchanged.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func NewConflictError(format string, args ...any) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// StoreError wraps a persistence failure. Command-path writes retry these a
// bounded number of times; the clock path logs and drops instead.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store failure during %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// InvariantError marks a state the engine considers impossible, like two live
// encounters for one player. It is never silently repaired.
type InvariantError struct {
	Message string
}

func (e *InvariantError) Error() string {
	return "invariant violated: " + e.Message
}

func NewInvariantError(format string, args ...any) *InvariantError {
	return &InvariantError{Message: fmt.Sprintf(format, args...)}
}
