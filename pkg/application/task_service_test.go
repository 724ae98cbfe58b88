package application_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/felixgeelhaar/kanban/pkg/application"
	"github.com/felixgeelhaar/kanban/pkg/domain/board"
	"github.com/felixgeelhaar/kanban/pkg/domain/remote"
	"github.com/felixgeelhaar/kanban/pkg/storage"
)

func newTaskService(tasks remote.TaskList) (*application.TaskService, *storage.MemoryStore) {
	store := storage.NewMemoryStore()
	return application.NewTaskService(store, tasks, discardLogger()), store
}

func taskInput(title string, status board.Status) board.TaskInput {
	return board.TaskInput{
		Title:       title,
		Description: "about " + title,
		Priority:    board.PriorityMedium,
		Status:      status,
	}
}

func statusPatch(s board.Status) board.TaskPatch {
	return board.TaskPatch{Status: &s}
}

func TestTaskService_CreateOutsideReviewMakesNoRemoteCall(t *testing.T) {
	fake := &fakeTaskList{}
	svc, _ := newTaskService(fake)

	res, err := svc.CreateTask(context.Background(), taskInput("plain", board.StatusBacklog))
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if res.Sync.Action != board.SyncNone || len(fake.calls) != 0 {
		t.Errorf("expected no remote call, got %v", fake.ops())
	}
	if res.Task.IsLinked() {
		t.Errorf("task should not be linked")
	}
}

func TestTaskService_CreateInReviewLinks(t *testing.T) {
	fake := &fakeTaskList{}
	svc, store := newTaskService(fake)
	ctx := context.Background()

	res, err := svc.CreateTask(ctx, taskInput("Ship", board.StatusReview))
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if res.Sync.Action != board.SyncCreate || !res.Sync.OK() {
		t.Fatalf("unexpected sync outcome %+v", res.Sync)
	}
	if res.Task.ExternalTaskID != "remote-1" {
		t.Errorf("externalTaskId = %q", res.Task.ExternalTaskID)
	}

	call := fake.calls[0]
	if call.Title != "Review: Ship" {
		t.Errorf("remote title = %q", call.Title)
	}
	if want := "about Ship\n\nKanban Board Task ID: " + res.Task.ID; call.Notes != want {
		t.Errorf("remote notes = %q, want %q", call.Notes, want)
	}

	stored, _ := store.Get(ctx, res.Task.ID)
	if stored.ExternalTaskID != "remote-1" {
		t.Errorf("link not persisted")
	}
}

func TestTaskService_CreateInReviewRemoteFailure(t *testing.T) {
	fake := &fakeTaskList{fail: true}
	svc, store := newTaskService(fake)
	ctx := context.Background()

	res, err := svc.CreateTask(ctx, taskInput("Ship", board.StatusReview))
	if err != nil {
		t.Fatalf("remote failure must not fail create: %v", err)
	}
	if !res.Sync.Skipped() || !errors.Is(res.Sync.Err, errRemoteDown) {
		t.Errorf("expected skipped sync, got %+v", res.Sync)
	}
	stored, _ := store.Get(ctx, res.Task.ID)
	if stored.Status != board.StatusReview || stored.IsLinked() {
		t.Errorf("unexpected stored task %+v", stored)
	}
}

func TestTaskService_CreateValidation(t *testing.T) {
	fake := &fakeTaskList{}
	svc, store := newTaskService(fake)
	ctx := context.Background()

	_, err := svc.CreateTask(ctx, board.TaskInput{Title: "x"})
	var ve *board.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if want := []string{"description", "priority", "status"}; !reflect.DeepEqual(ve.Fields, want) {
		t.Errorf("fields = %v, want %v", ve.Fields, want)
	}
	if store.Writes() != 0 || len(fake.calls) != 0 {
		t.Errorf("invalid create must not write or call remote")
	}
}

func TestTaskService_UpdateTransitions(t *testing.T) {
	tests := []struct {
		name       string
		start      board.Status
		to         board.Status
		wantOps    []string
		wantLinked bool
	}{
		{"into review", board.StatusInProgress, board.StatusReview, []string{"create"}, true},
		{"review to done", board.StatusReview, board.StatusDone, []string{"create", "complete"}, false},
		{"review to in progress", board.StatusReview, board.StatusInProgress, []string{"create", "delete"}, false},
		{"review to review", board.StatusReview, board.StatusReview, []string{"create"}, true},
		{"backlog to done", board.StatusBacklog, board.StatusDone, []string{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeTaskList{}
			svc, _ := newTaskService(fake)
			ctx := context.Background()

			created, err := svc.CreateTask(ctx, taskInput("t", tt.start))
			if err != nil {
				t.Fatal(err)
			}
			res, err := svc.UpdateTask(ctx, created.Task.ID, statusPatch(tt.to))
			if err != nil {
				t.Fatalf("UpdateTask: %v", err)
			}
			if res.Task.Status != tt.to {
				t.Errorf("status = %s, want %s", res.Task.Status, tt.to)
			}
			if got := fake.ops(); !reflect.DeepEqual(got, tt.wantOps) {
				t.Errorf("remote calls = %v, want %v", got, tt.wantOps)
			}
			if res.Task.IsLinked() != tt.wantLinked {
				t.Errorf("linked = %v, want %v", res.Task.IsLinked(), tt.wantLinked)
			}
		})
	}
}

func TestTaskService_UpdateIntoReviewUsesFieldsBeforePatch(t *testing.T) {
	fake := &fakeTaskList{}
	svc, _ := newTaskService(fake)
	ctx := context.Background()

	created, _ := svc.CreateTask(ctx, taskInput("old", board.StatusInProgress))
	title := "new"
	patch := statusPatch(board.StatusReview)
	patch.Title = &title
	res, err := svc.UpdateTask(ctx, created.Task.ID, patch)
	if err != nil {
		t.Fatal(err)
	}
	if fake.calls[0].Title != "Review: old" {
		t.Errorf("remote title = %q", fake.calls[0].Title)
	}
	if want := "about old\n\nKanban Board Task ID: " + created.Task.ID; fake.calls[0].Notes != want {
		t.Errorf("remote notes = %q, want %q", fake.calls[0].Notes, want)
	}
	if res.Task.Title != "new" || !res.Task.IsLinked() {
		t.Errorf("unexpected task %+v", res.Task)
	}
}

func TestTaskService_UpdateSingleWrite(t *testing.T) {
	fake := &fakeTaskList{}
	svc, store := newTaskService(fake)
	ctx := context.Background()

	created, _ := svc.CreateTask(ctx, taskInput("t", board.StatusInProgress))
	before := store.Writes()
	if _, err := svc.UpdateTask(ctx, created.Task.ID, statusPatch(board.StatusReview)); err != nil {
		t.Fatal(err)
	}
	if store.Writes() != before+1 {
		t.Errorf("expected one write, got %d", store.Writes()-before)
	}
}

func TestTaskService_LeavingReviewClearsLinkOnRemoteFailure(t *testing.T) {
	fake := &fakeTaskList{}
	svc, _ := newTaskService(fake)
	ctx := context.Background()

	created, _ := svc.CreateTask(ctx, taskInput("t", board.StatusReview))
	fake.fail = true
	res, err := svc.UpdateTask(ctx, created.Task.ID, statusPatch(board.StatusDone))
	if err != nil {
		t.Fatalf("remote failure must not fail update: %v", err)
	}
	if res.Task.Status != board.StatusDone || res.Task.IsLinked() {
		t.Errorf("unexpected task %+v", res.Task)
	}
	if !res.Sync.Skipped() {
		t.Errorf("expected skipped sync")
	}
}

func TestTaskService_PatchWithoutStatusKeepsLink(t *testing.T) {
	fake := &fakeTaskList{}
	svc, _ := newTaskService(fake)
	ctx := context.Background()

	created, _ := svc.CreateTask(ctx, taskInput("t", board.StatusReview))
	agent := "Charlie"
	res, err := svc.UpdateTask(ctx, created.Task.ID, board.TaskPatch{Agent: &agent})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Task.IsLinked() || len(fake.calls) != 1 {
		t.Errorf("patch without status must not touch the remote task: %v", fake.ops())
	}
}

func TestTaskService_PatchCannotSetLink(t *testing.T) {
	fake := &fakeTaskList{}
	svc, _ := newTaskService(fake)
	ctx := context.Background()

	created, _ := svc.CreateTask(ctx, taskInput("t", board.StatusBacklog))
	forged := "forged"
	res, err := svc.UpdateTask(ctx, created.Task.ID, board.TaskPatch{ExternalTaskID: &forged})
	if err != nil {
		t.Fatal(err)
	}
	if res.Task.IsLinked() {
		t.Errorf("client patch set externalTaskId")
	}
}

func TestTaskService_UpdateUnknownAndInvalid(t *testing.T) {
	fake := &fakeTaskList{}
	svc, store := newTaskService(fake)
	ctx := context.Background()

	if _, err := svc.UpdateTask(ctx, "task-missing", statusPatch(board.StatusReview)); !errors.Is(err, board.ErrTaskNotFound) {
		t.Errorf("expected not found, got %v", err)
	}

	created, _ := svc.CreateTask(ctx, taskInput("t", board.StatusBacklog))
	writes := store.Writes()
	if _, err := svc.UpdateTask(ctx, created.Task.ID, statusPatch("Nope")); !errors.Is(err, board.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
	if store.Writes() != writes || len(fake.calls) != 0 {
		t.Errorf("rejected update must not write or call remote")
	}
}

func TestTaskService_ListAndResolve(t *testing.T) {
	svc, _ := newTaskService(&fakeTaskList{})
	ctx := context.Background()

	a, _ := svc.CreateTask(ctx, taskInput("a", board.StatusBacklog))
	_, _ = svc.CreateTask(ctx, taskInput("b", board.StatusDone))

	all, _ := svc.ListTasks(ctx, "")
	if len(all) != 2 {
		t.Errorf("expected 2 tasks, got %d", len(all))
	}
	done, _ := svc.ListTasks(ctx, board.StatusDone)
	if len(done) != 1 || done[0].Title != "b" {
		t.Errorf("unexpected filter result %+v", done)
	}

	got, err := svc.ResolveTask(ctx, a.Task.ID)
	if err != nil || got.ID != a.Task.ID {
		t.Errorf("ResolveTask(exact) = %v, %v", got, err)
	}
}

func TestTaskService_DisabledRemote(t *testing.T) {
	svc := application.NewTaskService(storage.NewMemoryStore(), nil, discardLogger())
	res, err := svc.CreateTask(context.Background(), taskInput("t", board.StatusReview))
	if err != nil {
		t.Fatal(err)
	}
	if !errors.Is(res.Sync.Err, remote.ErrSyncDisabled) || res.Task.IsLinked() {
		t.Errorf("unexpected outcome %+v", res.Sync)
	}
}

func TestTaskService_CreateInReviewSingleWrite(t *testing.T) {
	fake := &fakeTaskList{}
	repo := storage.NewFilesystemRepository(t.TempDir())
	svc := application.NewTaskService(repo, fake, discardLogger())
	ctx := context.Background()

	res, err := svc.CreateTask(ctx, taskInput("Ship", board.StatusReview))
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if !res.Task.IsLinked() {
		t.Fatalf("task not linked: %+v", res.Task)
	}
	if !res.Task.CreatedAt.Equal(res.Task.UpdatedAt) {
		t.Errorf("createdAt %s != updatedAt %s", res.Task.CreatedAt, res.Task.UpdatedAt)
	}

	stored, err := repo.Get(ctx, res.Task.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !stored.CreatedAt.Equal(stored.UpdatedAt) || stored.ExternalTaskID != "remote-1" {
		t.Errorf("unexpected stored task %+v", stored)
	}

	mem, store := newTaskService(&fakeTaskList{})
	if _, err := mem.CreateTask(ctx, taskInput("Ship", board.StatusReview)); err != nil {
		t.Fatal(err)
	}
	if store.Writes() != 1 {
		t.Errorf("expected one write, got %d", store.Writes())
	}
}

func TestTaskService_SameValuePatchOnlyTouchesUpdatedAt(t *testing.T) {
	fake := &fakeTaskList{}
	svc, store := newTaskService(fake)
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, taskInput("Ship", board.StatusReview))
	if err != nil {
		t.Fatal(err)
	}
	before, _ := store.Get(ctx, created.Task.ID)
	later := before.UpdatedAt.Add(time.Minute)
	store.SetClock(func() time.Time { return later })

	title := before.Title
	res, err := svc.UpdateTask(ctx, before.ID, board.TaskPatch{Title: &title})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if !res.Task.UpdatedAt.Equal(later) {
		t.Errorf("updatedAt = %s, want %s", res.Task.UpdatedAt, later)
	}
	if res.Sync.Action != board.SyncNone || len(fake.calls) != 1 {
		t.Errorf("same-value patch called the remote: %v", fake.ops())
	}

	want := before.Clone()
	want.UpdatedAt = later
	if got := res.Task.Clone(); !reflect.DeepEqual(got, want) {
		t.Errorf("fields changed:\n got %+v\nwant %+v", got, want)
	}
	if res.Task.ExternalTaskID != "remote-1" {
		t.Errorf("link lost: %q", res.Task.ExternalTaskID)
	}
}
