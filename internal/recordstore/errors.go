package recordstore

import (
	"errors"
	"fmt"
)

// ErrStore is the generic failure for any record store call. Every error the
// client returns matches it with errors.Is.
var ErrStore = errors.New("record store request failed")

// Error describes a failed store call.
type Error struct {
	Op         string // list|get|create|update|delete
	StatusCode int    // 0 when no response was received
	RequestID  string
	Err        error
}

func (e *Error) Error() string {
	msg := failedMessage(e.Op)
	switch {
	case e.StatusCode != 0:
		msg = fmt.Sprintf("%s: status %d", msg, e.StatusCode)
	case e.Err != nil:
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.RequestID != "" {
		msg += " (request " + e.RequestID + ")"
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrStore}
	}
	return []error{ErrStore, e.Err}
}

func failedMessage(op string) string {
	switch op {
	case OpList:
		return "failed to fetch users"
	case OpGet:
		return "failed to fetch user"
	case OpCreate:
		return "failed to create user"
	case OpUpdate:
		return "failed to update user"
	case OpDelete:
		return "failed to delete user"
	default:
		return "failed to " + op
	}
}
