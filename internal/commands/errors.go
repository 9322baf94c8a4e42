package commands

import (
	"errors"
	"fmt"
	"io"

	"taskdeck/internal/exitcode"
	"taskdeck/internal/service"
)

// fail prints an error and maps it to an exit code by its category.
func fail(errOut io.Writer, err error) int {
	fmt.Fprintf(errOut, "error: %v\n", err)
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrNotFound):
		return exitcode.UserError
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrUnauthenticated),
		errors.Is(err, service.ErrLinkInvalid),
		errors.Is(err, service.ErrRegistration):
		return exitcode.AuthError
	default:
		return exitcode.BackendError
	}
}
