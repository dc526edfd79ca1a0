// Package apperr defines the error taxonomy shared by the provisioning
// pipeline and the self-update command.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure. Kinds are stable and shown to the user.
type Kind string

const (
	Usage                  Kind = "Usage"
	EnvironmentCheckFailed Kind = "EnvironmentCheckFailed"
	CommandFailed          Kind = "CommandFailed"
	FileOperationFailed    Kind = "FileOperationFailed"
	UpdateCheckFailed      Kind = "UpdateCheckFailed"
	UpdateFailed           Kind = "UpdateFailed"
	NoBackupFound          Kind = "NoBackupFound"
	NotPackaged            Kind = "NotPackaged"
	Internal               Kind = "Internal"
)

// Error is the standard error type. Cause is kept for errors.Is/As.
type Error struct {
	Kind    Kind
	Msg     string
	Cause   error
	Details map[string]string
}

// Error returns "message: cause", or just the message when there is no cause.
func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Msg
	}
	return fmt.Sprintf("%s: %v", e.Msg, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an Error without a cause.
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf creates an Error with a formatted message.
func Newf(kind Kind, format string, a ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, a...)}
}

// Wrap creates an Error that wraps err.
func Wrap(kind Kind, msg string, err error) error {
	return &Error{Kind: kind, Msg: msg, Cause: err}
}

// WrapWithDetails creates an Error that wraps err and carries structured context.
func WrapWithDetails(kind Kind, msg string, err error, details map[string]string) error {
	e := &Error{Kind: kind, Msg: msg, Cause: err}
	if len(details) > 0 {
		e.Details = make(map[string]string, len(details))
		for k, v := range details {
			e.Details[k] = v
		}
	}
	return e
}

// KindOf returns the Kind of the outermost *Error in err's chain,
// or Internal if there is none. A nil error has no kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Internal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// ExitCode maps an error to a process exit status:
// 0 for nil, 2 for usage errors, 1 for everything else.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case KindOf(err) == Usage:
		return 2
	default:
		return 1
	}
}
