package errors

import "errors"

// Sentinel errors for known conditions.
var (
	// ErrValidation indicates a configuration or template input failed validation.
	ErrValidation = errors.New("validation error")

	// ErrNotFound indicates a project, file, or tool was not found.
	ErrNotFound = errors.New("not found")

	// ErrUsage indicates the command line could not be parsed.
	ErrUsage = errors.New("usage error")

	// ErrUnknownTask indicates the requested task is not registered.
	ErrUnknownTask = errors.New("unknown task")

	// ErrToolFailed indicates an external tool exited with a nonzero status.
	ErrToolFailed = errors.New("tool failed")
)
