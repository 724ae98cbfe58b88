// Package remote defines the port to the external task list that mirrors Review tasks.
package remote

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrSyncDisabled is reported by every call when no remote is configured.
	ErrSyncDisabled = errors.New("remote sync disabled")

	// ErrMissingCredentials indicates the token or client credentials file is absent.
	ErrMissingCredentials = errors.New("remote credentials not found")

	// ErrEmptyResponse indicates the remote answered without the expected value.
	ErrEmptyResponse = errors.New("remote returned an empty response")
)

// Status is the state of a remote task.
type Status string

const (
	StatusNeedsAction Status = "needsAction"
	StatusCompleted   Status = "completed"
)

// IsValid returns true for statuses the remote is known to report.
func (s Status) IsValid() bool {
	return s == StatusNeedsAction || s == StatusCompleted
}

// Outcome is the result of one remote call. A failed call carries Err and the zero Value.
type Outcome[T any] struct {
	Value T
	Err   error
}

// OK reports whether the call succeeded.
func (o Outcome[T]) OK() bool {
	return o.Err == nil
}

// Succeeded wraps a value in a successful outcome.
func Succeeded[T any](v T) Outcome[T] {
	return Outcome[T]{Value: v}
}

// Failed wraps an error in a failed outcome.
func Failed[T any](err error) Outcome[T] {
	return Outcome[T]{Err: err}
}

// TaskList is the external task list, scoped to one fixed list.
// Implementations never panic and report every failure through the Outcome.
type TaskList interface {
	CreateTask(ctx context.Context, title, notes string) Outcome[string]
	CompleteTask(ctx context.Context, remoteID string) Outcome[bool]
	DeleteTask(ctx context.Context, remoteID string) Outcome[bool]
	TaskStatus(ctx context.Context, remoteID string) Outcome[Status]
}

// Disabled is the TaskList used when sync is turned off.
type Disabled struct{}

func (Disabled) CreateTask(context.Context, string, string) Outcome[string] {
	return Failed[string](ErrSyncDisabled)
}

func (Disabled) CompleteTask(context.Context, string) Outcome[bool] {
	return Failed[bool](ErrSyncDisabled)
}

func (Disabled) DeleteTask(context.Context, string) Outcome[bool] {
	return Failed[bool](ErrSyncDisabled)
}

func (Disabled) TaskStatus(context.Context, string) Outcome[Status] {
	return Failed[Status](ErrSyncDisabled)
}

// APIError is a non-2xx answer from the remote API.
type APIError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: remote API error (%d): %s", e.Operation, e.StatusCode, e.Body)
}
