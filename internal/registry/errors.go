package registry

import (
	"errors"
	"fmt"
)

// OrderingViolationError reports a scope exit that does not match the top
// of its channel's stack. Scopes on one channel must close in reverse order
// of opening; an out-of-order exit is a programming error in the calling
// layer, not a recoverable condition, so the registry refuses to pop the
// wrong frame.
type OrderingViolationError struct {
	// Channel is the channel whose stack was mis-released.
	Channel Channel

	// Message describes the violation.
	Message string
}

func (e *OrderingViolationError) Error() string {
	return fmt.Sprintf("ordering violation on channel %s: %s", e.Channel, e.Message)
}

// IsOrderingViolation reports whether err is an ordering violation.
// Uses errors.As to handle wrapped errors.
func IsOrderingViolation(err error) bool {
	var ov *OrderingViolationError
	return errors.As(err, &ov)
}
