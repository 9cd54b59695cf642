package cli

import (
	"errors"
	"fmt"

	"partners-cli/internal/model"
)

type notFoundError struct {
	kind string
	id   string
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.kind, e.id)
}

func errNotFound(kind, id string) error {
	return notFoundError{kind: kind, id: id}
}

// reportedError marks an error that was already printed to stderr.
type reportedError struct {
	err error
}

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

// Reported reports whether err was already written to stderr by a command.
func Reported(err error) bool {
	var r reportedError
	return errors.As(err, &r)
}

const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitInvalid  = 2
	ExitNotFound = 3
)

// ExitCode maps a command error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var fe model.FieldErrors
	if errors.As(err, &fe) {
		return ExitInvalid
	}
	var nf notFoundError
	if errors.As(err, &nf) {
		return ExitNotFound
	}
	return ExitFailure
}
