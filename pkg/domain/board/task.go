// Package board holds the kanban board aggregate: tasks, their columns and
// the rules deciding when a task is mirrored to the remote task list.
package board

import (
	"encoding/json"
	"strings"
	"time"
)

// Task is a single card on the board.
type Task struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Priority       Priority  `json:"priority"`
	Status         Status    `json:"status"`
	Tags           []string  `json:"tags"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	Agent          string    `json:"agent,omitempty"`
	BlockReason    string    `json:"blockReason,omitempty"`
	ExternalTaskID string    `json:"externalTaskId,omitempty"`
}

// UnmarshalJSON reads tasks written before the remote link was renamed from googleTaskId.
func (t *Task) UnmarshalJSON(data []byte) error {
	type taskAlias Task
	var raw struct {
		taskAlias
		GoogleTaskID string `json:"googleTaskId,omitempty"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = Task(raw.taskAlias)
	if t.ExternalTaskID == "" && raw.GoogleTaskID != "" {
		t.ExternalTaskID = raw.GoogleTaskID
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return nil
}

// IsLinked reports whether a remote task currently mirrors this task.
func (t *Task) IsLinked() bool {
	return t.ExternalTaskID != ""
}

// Clone returns a deep copy so callers cannot mutate stored tags.
func (t Task) Clone() Task {
	out := t
	out.Tags = append([]string{}, t.Tags...)
	return out
}

// Board is the single persisted document.
type Board struct {
	Tasks       []Task    `json:"tasks"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// NewBoard returns an empty board stamped with now.
func NewBoard(now time.Time) *Board {
	return &Board{Tasks: []Task{}, LastUpdated: now}
}

// Find returns the index of the task with the exact id, or -1.
func (b *Board) Find(id string) int {
	for i := range b.Tasks {
		if b.Tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// TaskInput carries the fields accepted when creating a task.
type TaskInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	Status      Status   `json:"status"`
	Tags        []string `json:"tags,omitempty"`
	Agent       string   `json:"agent,omitempty"`
	BlockReason string   `json:"blockReason,omitempty"`
}

// Validate reports every missing or invalid required field at once.
func (in TaskInput) Validate() error {
	var missing []string
	if strings.TrimSpace(in.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(in.Description) == "" {
		missing = append(missing, "description")
	}
	if in.Priority == "" {
		missing = append(missing, "priority")
	}
	if in.Status == "" {
		missing = append(missing, "status")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing, Reason: "missing required fields"}
	}

	var invalid []string
	if !in.Priority.IsValid() {
		invalid = append(invalid, "priority")
	}
	if !in.Status.IsValid() {
		invalid = append(invalid, "status")
	}
	if len(invalid) > 0 {
		return &ValidationError{Fields: invalid, Reason: "invalid field values"}
	}
	return nil
}

// NewTask validates the input and builds a task with a fresh id.
func NewTask(in TaskInput, now time.Time) (*Task, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	return &Task{
		ID:          NewTaskID(now),
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		Status:      in.Status,
		Tags:        append([]string{}, tags...),
		CreatedAt:   now,
		UpdatedAt:   now,
		Agent:       in.Agent,
		BlockReason: in.BlockReason,
	}, nil
}

// TaskPatch is a partial update. Nil fields are left untouched.
// Id, createdAt and updatedAt are not part of the patch and therefore never change through it.
type TaskPatch struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	Status      *Status   `json:"status,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
	Agent       *string   `json:"agent,omitempty"`
	BlockReason *string   `json:"blockReason,omitempty"`

	// ExternalTaskID is only set by the sync policy and reconciliation.
	ExternalTaskID *string `json:"-"`
}

// Validate rejects patches that would put the task in an invalid state.
func (p TaskPatch) Validate() error {
	var invalid []string
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		invalid = append(invalid, "title")
	}
	if p.Description != nil && strings.TrimSpace(*p.Description) == "" {
		invalid = append(invalid, "description")
	}
	if p.Priority != nil && !p.Priority.IsValid() {
		invalid = append(invalid, "priority")
	}
	if p.Status != nil && !p.Status.IsValid() {
		invalid = append(invalid, "status")
	}
	if len(invalid) > 0 {
		return &ValidationError{Fields: invalid, Reason: "invalid field values"}
	}
	return nil
}

// ChangesStatus reports whether applying the patch to a task in status current moves it.
func (p TaskPatch) ChangesStatus(current Status) bool {
	return p.Status != nil && *p.Status != current
}

// Apply merges the patch into the task and refreshes updatedAt.
func (t *Task) Apply(p TaskPatch, now time.Time) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Tags != nil {
		t.Tags = append([]string{}, (*p.Tags)...)
	}
	if p.Agent != nil {
		t.Agent = *p.Agent
	}
	if p.BlockReason != nil {
		t.BlockReason = *p.BlockReason
	}
	if p.ExternalTaskID != nil {
		t.ExternalTaskID = *p.ExternalTaskID
	}
	t.UpdatedAt = now
	return nil
}
