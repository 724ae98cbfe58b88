package board

import "context"

// Store persists the board. Implementations read and write the whole board per call.
type Store interface {
	List(ctx context.Context) ([]Task, error)
	// Get returns a *NotFoundError when no task has the id.
	Get(ctx context.Context, id string) (*Task, error)
	// Create returns a *ValidationError when a required field is missing.
	Create(ctx context.Context, in TaskInput) (*Task, error)
	// Insert persists a task built with NewTask as is, timestamps included.
	// A task whose id is already on the board is rejected with a *ValidationError.
	Insert(ctx context.Context, task Task) (*Task, error)
	// Update returns a *NotFoundError, without writing, when no task has the id.
	Update(ctx context.Context, id string, patch TaskPatch) (*Task, error)
}
