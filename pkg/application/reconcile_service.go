package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/felixgeelhaar/kanban/pkg/domain/board"
	"github.com/felixgeelhaar/kanban/pkg/domain/remote"
)

// SyncUpdate is one task moved to Done because its remote task was completed.
type SyncUpdate struct {
	TaskID string `json:"taskId"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

// SyncSummary is the result of one reconciliation pass.
type SyncSummary struct {
	Synced  int          `json:"synced"`
	Updates []SyncUpdate `json:"updates"`
}

// ReconcileService pulls completion back from the remote list.
type ReconcileService struct {
	store  board.Store
	remote remote.TaskList
	logger *slog.Logger
}

func NewReconcileService(store board.Store, tasks remote.TaskList, logger *slog.Logger) *ReconcileService {
	if tasks == nil {
		tasks = remote.Disabled{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReconcileService{store: store, remote: tasks, logger: logger}
}

// Reconcile moves every linked Review task whose remote task is completed to Done and
// drops its link. The store is written directly so no second remote call is made.
// Remote failures leave the task untouched; only a failed board read is returned.
func (s *ReconcileService) Reconcile(ctx context.Context) (*SyncSummary, error) {
	tasks, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	summary := &SyncSummary{Updates: []SyncUpdate{}}
	for _, task := range tasks {
		if !task.Status.IsReview() || !task.IsLinked() {
			continue
		}

		out := s.remote.TaskStatus(ctx, task.ExternalTaskID)
		if !out.OK() {
			if errors.Is(out.Err, remote.ErrSyncDisabled) {
				s.logger.Debug("reconcile skipped", "task_id", task.ID, "error", out.Err)
				continue
			}
			s.logger.Warn("failed to poll remote task", "task_id", task.ID, "remote_id", task.ExternalTaskID, "error", out.Err)
			continue
		}
		if out.Value != remote.StatusCompleted {
			continue
		}

		done := board.StatusDone
		unlinked := ""
		if _, err := s.store.Update(ctx, task.ID, board.TaskPatch{Status: &done, ExternalTaskID: &unlinked}); err != nil {
			s.logger.Error("failed to move completed review task", "task_id", task.ID, "error", err)
			continue
		}

		s.logger.Info("review completed remotely", "task_id", task.ID, "remote_id", task.ExternalTaskID)
		summary.Updates = append(summary.Updates, SyncUpdate{
			TaskID: task.ID,
			Title:  task.Title,
			Status: string(remote.StatusCompleted),
		})
	}
	summary.Synced = len(summary.Updates)
	return summary, nil
}
