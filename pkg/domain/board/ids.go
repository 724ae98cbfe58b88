package board

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewTaskID returns a time-prefixed id with a random suffix, e.g. task-1718000000000-3f2a9c1d.
func NewTaskID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("task-%d-%s", now.UnixMilli(), suffix)
}

// ResolvePrefix finds the task whose id is exactly ref, or the only task whose id starts with ref.
func ResolvePrefix(tasks []Task, ref string) (*Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, &ValidationError{Fields: []string{"id"}, Reason: "missing required fields"}
	}

	var matches []int
	for i := range tasks {
		if tasks[i].ID == ref {
			t := tasks[i].Clone()
			return &t, nil
		}
		if strings.HasPrefix(tasks[i].ID, ref) {
			matches = append(matches, i)
		}
	}

	switch len(matches) {
	case 0:
		return nil, &NotFoundError{ID: ref}
	case 1:
		t := tasks[matches[0]].Clone()
		return &t, nil
	default:
		ids := make([]string, 0, len(matches))
		for _, i := range matches {
			ids = append(ids, tasks[i].ID)
		}
		sort.Strings(ids)
		return nil, &AmbiguousIDError{Prefix: ref, Matches: ids}
	}
}
