package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a ReportError so callers can match on it without inspecting messages.
type Kind int

const (
	// KindUnknown is the zero value used for unclassified failures.
	KindUnknown Kind = iota
	// KindValidation marks missing or malformed input detected before any I/O.
	KindValidation
	// KindIO marks filesystem access failures.
	KindIO
	// KindParse marks malformed analysis reports.
	KindParse
	// KindConfig marks invalid configuration.
	KindConfig
	// KindPublish marks failures of the comment publishing call.
	KindPublish
	// KindUpload marks failures of the artifact upload call.
	KindUpload
)

// String returns the human-readable name of the kind.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindIO:
		return "io"
	case KindParse:
		return "parse"
	case KindConfig:
		return "config"
	case KindPublish:
		return "publish"
	case KindUpload:
		return "upload"
	default:
		return "unknown"
	}
}

// ReportError is returned by every public operation that talks to a
// collaborator. It carries a message naming the failed operation and the
// original cause.
type ReportError struct {
	Kind    Kind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ReportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *ReportError) Unwrap() error {
	return e.Cause
}

// New creates a ReportError of the given kind.
func New(kind Kind, message string, cause error) *ReportError {
	return &ReportError{
		Kind:    kind,
		Message: message,
		Cause:   cause,
	}
}

// Validation creates a KindValidation error without a cause.
func Validation(format string, args ...interface{}) *ReportError {
	return New(KindValidation, fmt.Sprintf(format, args...), nil)
}

// IsKind reports whether any ReportError in err's chain has the given kind.
func IsKind(err error, kind Kind) bool {
	for err != nil {
		var reportErr *ReportError
		if !errors.As(err, &reportErr) {
			return false
		}
		if reportErr.Kind == kind {
			return true
		}
		err = reportErr.Cause
	}
	return false
}

// CommandError represents a failed CLI command together with its exit code.
type CommandError struct {
	ExitCode int
	Err      error
}

// Error implements the error interface, returning the message of the wrapped error.
func (e *CommandError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the wrapped error.
func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError wraps err with an exit code.
func NewCommandError(err error, code int) *CommandError {
	return &CommandError{
		ExitCode: code,
		Err:      err,
	}
}
