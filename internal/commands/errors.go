package commands

// UserError is an error whose message goes straight back to the player.
// These are bad input or bad timing, not system failures.
type UserError struct {
	Message string
}

func (e *UserError) Error() string {
	return e.Message
}

// NewUserError creates a user-facing error.
func NewUserError(msg string) *UserError {
	return &UserError{Message: msg}
}
