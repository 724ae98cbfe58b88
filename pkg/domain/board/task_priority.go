package board

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Priority ranks tasks inside a column.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Med"
	PriorityHigh   Priority = "High"
)

var priorityOrder = map[Priority]int{
	PriorityLow:    1,
	PriorityMedium: 2,
	PriorityHigh:   3,
}

// AllPriorities returns all valid priorities, lowest first.
func AllPriorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh}
}

// IsValid returns true if the priority is a valid task priority.
func (p Priority) IsValid() bool {
	_, ok := priorityOrder[p]
	return ok
}

// String returns the string representation of the priority.
func (p Priority) String() string {
	return string(p)
}

// Order returns the numeric order of the priority (higher = more important).
func (p Priority) Order() int {
	return priorityOrder[p]
}

// ParsePriority parses a string into a Priority.
func ParsePriority(s string) (Priority, error) {
	priority := Priority(s)
	if !priority.IsValid() {
		return "", &ValidationError{Reason: "invalid task priority " + strconv.Quote(s)}
	}
	return priority, nil
}

// MarshalJSON implements json.Marshaler interface.
func (p Priority) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(p))
}

// UnmarshalJSON implements json.Unmarshaler interface.
func (p *Priority) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	if str == "" {
		*p = ""
		return nil
	}

	priority := Priority(str)
	if !priority.IsValid() {
		return fmt.Errorf("invalid task priority: %s", str)
	}

	*p = priority
	return nil
}
