package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/kanban/pkg/domain/board"
	"github.com/felixgeelhaar/kanban/pkg/domain/remote"
)

// SyncOutcome records the remote call a mutation triggered, if any.
type SyncOutcome struct {
	Action   board.SyncAction `json:"action"`
	RemoteID string           `json:"remoteId,omitempty"`
	Err      error            `json:"-"`
}

// OK reports whether the remote call, if one was due, succeeded.
func (o SyncOutcome) OK() bool {
	return o.Err == nil
}

// Skipped reports whether a remote call was due but did not succeed.
func (o SyncOutcome) Skipped() bool {
	return o.Action != board.SyncNone && o.Err != nil
}

// MutationResult is the persisted task plus what happened remotely.
type MutationResult struct {
	Task *board.Task
	Sync SyncOutcome
}

// TaskService runs board mutations through the review sync policy.
// Remote failures are logged and reported in the result; they never fail the mutation.
type TaskService struct {
	store  board.Store
	remote remote.TaskList
	logger *slog.Logger
	clock  func() time.Time
}

func NewTaskService(store board.Store, tasks remote.TaskList, logger *slog.Logger) *TaskService {
	if tasks == nil {
		tasks = remote.Disabled{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskService{
		store:  store,
		remote: tasks,
		logger: logger,
		clock:  func() time.Time { return time.Now().UTC() },
	}
}

// ListTasks returns every task in creation order, optionally only those in status.
func (s *TaskService) ListTasks(ctx context.Context, status board.Status) ([]board.Task, error) {
	tasks, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if status == "" {
		return tasks, nil
	}
	filtered := make([]board.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Status == status {
			filtered = append(filtered, t)
		}
	}
	return filtered, nil
}

func (s *TaskService) GetTask(ctx context.Context, id string) (*board.Task, error) {
	return s.store.Get(ctx, id)
}

// ResolveTask finds a task by exact id or unique id prefix.
func (s *TaskService) ResolveTask(ctx context.Context, ref string) (*board.Task, error) {
	tasks, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	return board.ResolvePrefix(tasks, ref)
}

// CreateTask mirrors a task starting in Review remotely, then persists it in a
// single write with the link already set.
func (s *TaskService) CreateTask(ctx context.Context, in board.TaskInput) (*MutationResult, error) {
	task, err := board.NewTask(in, s.clock())
	if err != nil {
		return nil, err
	}

	// A new task counts as a move from nowhere into its initial column.
	action, err := board.DecideSync("", task.Status, "")
	if err != nil {
		return nil, err
	}

	outcome := SyncOutcome{Action: board.SyncNone}
	if action == board.SyncCreate {
		outcome = s.createRemote(ctx, task)
		if outcome.OK() {
			task.ExternalTaskID = outcome.RemoteID
		}
	}

	created, err := s.store.Insert(ctx, *task)
	if err != nil {
		return nil, err
	}
	return &MutationResult{Task: created, Sync: outcome}, nil
}

// UpdateTask applies the patch. When it moves the task into or out of Review the
// matching remote call is made and the link change is persisted in the same write.
func (s *TaskService) UpdateTask(ctx context.Context, id string, patch board.TaskPatch) (*MutationResult, error) {
	// Client patches never carry the link.
	patch.ExternalTaskID = nil
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	current, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	outcome := SyncOutcome{Action: board.SyncNone}
	if patch.ChangesStatus(current.Status) {
		outcome.Action, err = board.DecideSync(current.Status, *patch.Status, current.ExternalTaskID)
		if err != nil {
			return nil, err
		}
	}

	switch outcome.Action {
	case board.SyncCreate:
		// The remote copy carries the title and description the task had before this patch.
		outcome = s.createRemote(ctx, current)
		if outcome.OK() {
			patch.ExternalTaskID = &outcome.RemoteID
		}
	case board.SyncComplete:
		outcome = s.finishRemote(board.SyncComplete, current, s.remote.CompleteTask(ctx, current.ExternalTaskID))
		patch.ExternalTaskID = new(string)
	case board.SyncDelete:
		outcome = s.finishRemote(board.SyncDelete, current, s.remote.DeleteTask(ctx, current.ExternalTaskID))
		patch.ExternalTaskID = new(string)
	}

	updated, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	return &MutationResult{Task: updated, Sync: outcome}, nil
}

func (s *TaskService) createRemote(ctx context.Context, task *board.Task) SyncOutcome {
	out := s.remote.CreateTask(ctx, board.RemoteTitle(task), board.RemoteNotes(task))
	if !out.OK() {
		s.logSkipped(board.SyncCreate, task.ID, out.Err)
		return SyncOutcome{Action: board.SyncCreate, Err: out.Err}
	}
	if out.Value == "" {
		s.logSkipped(board.SyncCreate, task.ID, remote.ErrEmptyResponse)
		return SyncOutcome{Action: board.SyncCreate, Err: remote.ErrEmptyResponse}
	}
	s.logger.Info("review task mirrored", "task_id", task.ID, "remote_id", out.Value)
	return SyncOutcome{Action: board.SyncCreate, RemoteID: out.Value}
}

func (s *TaskService) finishRemote(action board.SyncAction, task *board.Task, out remote.Outcome[bool]) SyncOutcome {
	outcome := SyncOutcome{Action: action, RemoteID: task.ExternalTaskID, Err: out.Err}
	if out.OK() && !out.Value {
		outcome.Err = remote.ErrEmptyResponse
	}
	if outcome.Err != nil {
		s.logSkipped(action, task.ID, outcome.Err)
		return outcome
	}
	s.logger.Info("review task closed remotely", "task_id", task.ID, "remote_id", task.ExternalTaskID, "action", string(action))
	return outcome
}

func (s *TaskService) logSkipped(action board.SyncAction, taskID string, err error) {
	if errors.Is(err, remote.ErrSyncDisabled) {
		s.logger.Debug("remote sync skipped", "action", string(action), "task_id", taskID, "error", err)
		return
	}
	s.logger.Warn("remote sync failed", "action", string(action), "task_id", taskID, "error", err)
}
