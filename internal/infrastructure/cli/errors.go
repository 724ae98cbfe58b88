package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/felixgeelhaar/kanban/pkg/domain/board"
)

// CLIError wraps domain errors with user-facing messages and actionable hints.
type CLIError struct {
	Message  string
	Hint     string
	Err      error
	ExitCode int
}

func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError with a default exit code of 1.
func NewCLIError(msg, hint string, err error) *CLIError {
	return &CLIError{
		Message:  msg,
		Hint:     hint,
		Err:      err,
		ExitCode: 1,
	}
}

// MapError converts known domain errors into CLIErrors with actionable hints.
// Unmapped errors are returned as-is.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	var ambErr *board.AmbiguousIDError
	if errors.As(err, &ambErr) {
		return NewCLIError(
			fmt.Sprintf("task id '%s' is ambiguous", ambErr.Prefix),
			"Use more characters of the id, 'kanban list' shows them all",
			err,
		)
	}

	var nfErr *board.NotFoundError
	if errors.As(err, &nfErr) {
		return NewCLIError(
			fmt.Sprintf("task '%s' not found", nfErr.ID),
			"Run 'kanban list' to see task ids",
			err,
		)
	}

	var valErr *board.ValidationError
	if errors.As(err, &valErr) {
		return NewCLIError(
			valErr.Error(),
			"Priorities are Low, Med, High; statuses are Backlog, Planned, \"In Progress\", Blocked, Review, Done",
			nil,
		)
	}

	return err
}

// ExitCode returns the process exit code for err.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var cliErr *CLIError
	if errors.As(err, &cliErr) && cliErr.ExitCode != 0 {
		return cliErr.ExitCode
	}
	return 1
}

func printError(w io.Writer, err error) {
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		_, _ = fmt.Fprintf(w, "Error: %s\n", cliErr.Error())
		if cliErr.Hint != "" {
			_, _ = fmt.Fprintf(w, "Hint: %s\n", cliErr.Hint)
		}
		return
	}
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
}
