package board

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func validInput() TaskInput {
	return TaskInput{
		Title:       "Fix bug",
		Description: "Crash on save",
		Priority:    PriorityMedium,
		Status:      StatusInProgress,
	}
}

func TestNewTask(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	task, err := NewTask(validInput(), now)
	if err != nil {
		t.Fatalf("NewTask failed: %v", err)
	}
	if !strings.HasPrefix(task.ID, "task-") {
		t.Errorf("unexpected id %q", task.ID)
	}
	if !task.CreatedAt.Equal(now) || !task.UpdatedAt.Equal(task.CreatedAt) {
		t.Errorf("expected createdAt = updatedAt = now, got %v / %v", task.CreatedAt, task.UpdatedAt)
	}
	if task.Tags == nil || len(task.Tags) != 0 {
		t.Errorf("expected empty tags, got %#v", task.Tags)
	}
	if task.ExternalTaskID != "" {
		t.Errorf("new task must not be linked")
	}
}

func TestNewTask_UniqueIDs(t *testing.T) {
	now := time.Now()
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		task, err := NewTask(validInput(), now)
		if err != nil {
			t.Fatal(err)
		}
		if seen[task.ID] {
			t.Fatalf("duplicate id %s", task.ID)
		}
		seen[task.ID] = true
	}
}

func TestTaskInput_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*TaskInput)
		fields []string
	}{
		{"valid", func(*TaskInput) {}, nil},
		{"missing title", func(in *TaskInput) { in.Title = "" }, []string{"title"}},
		{"blank description", func(in *TaskInput) { in.Description = "  " }, []string{"description"}},
		{"missing priority and status", func(in *TaskInput) { in.Priority = ""; in.Status = "" }, []string{"priority", "status"}},
		{"unknown status", func(in *TaskInput) { in.Status = "Doing" }, []string{"status"}},
		{"unknown priority", func(in *TaskInput) { in.Priority = "Urgent" }, []string{"priority"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			err := in.Validate()
			if tt.fields == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if !errors.Is(err, ErrValidation) {
				t.Errorf("expected errors.Is(err, ErrValidation)")
			}
			if strings.Join(vErr.Fields, ",") != strings.Join(tt.fields, ",") {
				t.Errorf("fields = %v, want %v", vErr.Fields, tt.fields)
			}
		})
	}
}

func TestTask_Apply(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	task, _ := NewTask(validInput(), created)
	id := task.ID

	later := created.Add(time.Hour)
	title := "Fix crash"
	status := StatusBlocked
	reason := "waiting on design"
	tags := []string{"bug", "urgent"}
	err := task.Apply(TaskPatch{Title: &title, Status: &status, BlockReason: &reason, Tags: &tags}, later)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if task.ID != id {
		t.Errorf("id changed")
	}
	if !task.CreatedAt.Equal(created) {
		t.Errorf("createdAt changed")
	}
	if !task.UpdatedAt.Equal(later) {
		t.Errorf("updatedAt not refreshed")
	}
	if task.Title != title || task.Status != status || task.BlockReason != reason {
		t.Errorf("patch not applied: %+v", task)
	}
	if task.Description != "Crash on save" || task.Priority != PriorityMedium {
		t.Errorf("untouched fields changed: %+v", task)
	}

	tags[0] = "mutated"
	if task.Tags[0] != "bug" {
		t.Errorf("tags alias the patch slice")
	}
}

func TestTask_ApplyRejectsInvalid(t *testing.T) {
	task, _ := NewTask(validInput(), time.Now())
	before := *task
	bad := Status("Later")
	if err := task.Apply(TaskPatch{Status: &bad}, time.Now()); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if task.Status != before.Status || !task.UpdatedAt.Equal(before.UpdatedAt) {
		t.Errorf("task mutated by rejected patch")
	}
}

func TestTaskPatch_IgnoresImmutableFields(t *testing.T) {
	var patch TaskPatch
	body := `{"id":"other","createdAt":"2020-01-01T00:00:00Z","externalTaskId":"x","title":"New"}`
	if err := json.Unmarshal([]byte(body), &patch); err != nil {
		t.Fatal(err)
	}
	if patch.ExternalTaskID != nil {
		t.Errorf("externalTaskId must not be client-settable")
	}
	if patch.Title == nil || *patch.Title != "New" {
		t.Errorf("title not decoded")
	}
}

func TestTask_UnmarshalLegacyGoogleTaskID(t *testing.T) {
	doc := `{"id":"task-1","title":"t","description":"d","priority":"High","status":"Review",
		"createdAt":"2026-01-01T00:00:00Z","updatedAt":"2026-01-01T00:00:00Z","googleTaskId":"g-42"}`
	var task Task
	if err := json.Unmarshal([]byte(doc), &task); err != nil {
		t.Fatal(err)
	}
	if task.ExternalTaskID != "g-42" {
		t.Errorf("expected legacy id to be read, got %q", task.ExternalTaskID)
	}
	if task.Tags == nil {
		t.Errorf("expected tags to default to empty")
	}

	out, _ := json.Marshal(task)
	if strings.Contains(string(out), "googleTaskId") || !strings.Contains(string(out), `"externalTaskId":"g-42"`) {
		t.Errorf("unexpected encoding: %s", out)
	}
}

func TestStatus_UnmarshalRejectsUnknown(t *testing.T) {
	var s Status
	if err := json.Unmarshal([]byte(`"Someday"`), &s); err == nil {
		t.Fatal("expected error for unknown status")
	}
	if err := json.Unmarshal([]byte(`"In Progress"`), &s); err != nil || s != StatusInProgress {
		t.Fatalf("got %q, %v", s, err)
	}
}

func TestPriority_Order(t *testing.T) {
	if !(PriorityHigh.Order() > PriorityMedium.Order() && PriorityMedium.Order() > PriorityLow.Order()) {
		t.Error("priority order broken")
	}
	if _, err := ParsePriority("Medium"); err == nil {
		t.Error("expected Medium to be rejected, the board uses Med")
	}
}
