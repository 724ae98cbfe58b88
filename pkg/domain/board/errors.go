package board

import (
	"errors"
	"strings"
)

// Domain errors for board operations.
var (
	// ErrValidation indicates a task input or patch was rejected.
	ErrValidation = errors.New("invalid task")

	// ErrTaskNotFound indicates no task has the requested id.
	ErrTaskNotFound = errors.New("task not found")

	// ErrAmbiguousID indicates an id prefix matched more than one task.
	ErrAmbiguousID = errors.New("ambiguous task id")
)

// ValidationError lists the fields that failed validation.
type ValidationError struct {
	Fields []string
	Reason string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Reason
	}
	return e.Reason + ": " + strings.Join(e.Fields, ", ")
}

// Is allows errors.Is to work with ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NotFoundError carries the id that could not be found.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return "task not found: " + e.ID
}

// Is allows errors.Is to work with NotFoundError.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrTaskNotFound
}

// AmbiguousIDError lists every task id a prefix matched.
type AmbiguousIDError struct {
	Prefix  string
	Matches []string
}

func (e *AmbiguousIDError) Error() string {
	return "task id prefix " + e.Prefix + " matches " + strings.Join(e.Matches, ", ")
}

// Is allows errors.Is to work with AmbiguousIDError.
func (e *AmbiguousIDError) Is(target error) bool {
	return target == ErrAmbiguousID
}
