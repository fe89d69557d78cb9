package cmd

import (
	"errors"
	"fmt"

	consts "github.com/khanhnv2901/iwtools/internal/shared/constants"
	sharedErrors "github.com/khanhnv2901/iwtools/internal/shared/errors"
)

// ExitError carries a process exit code out of a command's RunE.
// Silent errors were already reported to the user.
type ExitError struct {
	Code   int
	Err    error
	Silent bool
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// exitCodeFor maps an error returned by command execution to a process exit
// code.
func exitCodeFor(err error) int {
	if err == nil {
		return consts.ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	var (
		validationErr *sharedErrors.ValidationError
		configErr     *sharedErrors.ConfigLoadError
	)
	switch {
	case errors.As(err, &validationErr), errors.As(err, &configErr):
		return consts.ExitCommandError
	}
	return consts.ExitError
}
