package cmd

import (
	"errors"

	"github.com/pyskel/cli/internal/config"
	oerrors "github.com/pyskel/cli/internal/errors"
	"github.com/pyskel/cli/internal/task"
)

// Exit codes, aliased from internal/errors.
const (
	ExitSuccess      = oerrors.ExitSuccess
	ExitGeneralError = oerrors.ExitGeneralError
	ExitUsageError   = oerrors.ExitUsageError
	ExitNotFound     = oerrors.ExitNotFound
)

// ExitCodeFromError determines the exit code for an error. A failed tool
// passes its own exit status through.
func ExitCodeFromError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *oerrors.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	var statusErr *task.ExitStatusError
	if errors.As(err, &statusErr) && statusErr.Code > 0 {
		return statusErr.Code
	}

	var validationErrs config.ValidationErrors
	switch {
	case errors.Is(err, oerrors.ErrUsage),
		errors.Is(err, oerrors.ErrUnknownTask),
		errors.Is(err, oerrors.ErrValidation),
		errors.As(err, &validationErrs):
		return ExitUsageError
	case errors.Is(err, oerrors.ErrNotFound):
		return ExitNotFound
	default:
		return ExitGeneralError
	}
}

// ExitCodeName returns the name of the exit code.
func ExitCodeName(code int) string {
	switch code {
	case ExitSuccess:
		return "Success"
	case ExitGeneralError:
		return "General Error"
	case ExitUsageError:
		return "Usage Error"
	case ExitNotFound:
		return "Not Found"
	default:
		return "Tool Exit Status"
	}
}
