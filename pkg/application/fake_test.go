package application_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/felixgeelhaar/kanban/pkg/domain/remote"
)

var errRemoteDown = errors.New("remote down")

type remoteCall struct {
	Op    string
	ID    string
	Title string
	Notes string
}

// fakeTaskList records every call and answers from its fields.
type fakeTaskList struct {
	mu       sync.Mutex
	calls    []remoteCall
	next     int
	fail     bool
	statuses map[string]remote.Status
}

func (f *fakeTaskList) CreateTask(_ context.Context, title, notes string) remote.Outcome[string] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, remoteCall{Op: "create", Title: title, Notes: notes})
	if f.fail {
		return remote.Failed[string](errRemoteDown)
	}
	f.next++
	return remote.Succeeded(fmt.Sprintf("remote-%d", f.next))
}

func (f *fakeTaskList) CompleteTask(_ context.Context, id string) remote.Outcome[bool] {
	return f.record("complete", id)
}

func (f *fakeTaskList) DeleteTask(_ context.Context, id string) remote.Outcome[bool] {
	return f.record("delete", id)
}

func (f *fakeTaskList) TaskStatus(_ context.Context, id string) remote.Outcome[remote.Status] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, remoteCall{Op: "status", ID: id})
	if f.fail {
		return remote.Failed[remote.Status](errRemoteDown)
	}
	status, ok := f.statuses[id]
	if !ok {
		return remote.Failed[remote.Status](&remote.APIError{Operation: "get", StatusCode: 404})
	}
	return remote.Succeeded(status)
}

func (f *fakeTaskList) record(op, id string) remote.Outcome[bool] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, remoteCall{Op: op, ID: id})
	if f.fail {
		return remote.Failed[bool](errRemoteDown)
	}
	return remote.Succeeded(true)
}

func (f *fakeTaskList) ops() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.Op)
	}
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
