package lifecycle

import (
	"errors"
	"fmt"
)

// ErrPollBudgetExhausted means the resource never left its pending state
// within the allowed number of polls.
var ErrPollBudgetExhausted = errors.New("gave up waiting: poll attempt budget exhausted")

// ErrUpdatesNotSupported rejects stack updates that touch the resource.
var ErrUpdatesNotSupported = errors.New("updates are not supported")

// ValidationError reports a missing or malformed resource property.
// It is always raised before any remote call.
type ValidationError struct {
	Property string
	Message  string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s", e.Property, e.Message)
	}
	return fmt.Sprintf("%s is a required property", e.Property)
}

// RemoteStateError reports that a remote resource reached a state it
// cannot recover from while it was being created.
type RemoteStateError struct {
	Resource string
	ID       string
	State    string
	Message  string
}

func (e *RemoteStateError) Error() string {
	msg := fmt.Sprintf("%s %s is in %s state", e.Resource, e.ID, e.State)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
