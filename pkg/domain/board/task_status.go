package board

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Status is the board column a task sits in.
type Status string

const (
	StatusBacklog    Status = "Backlog"
	StatusPlanned    Status = "Planned"
	StatusInProgress Status = "In Progress"
	StatusBlocked    Status = "Blocked"
	StatusReview     Status = "Review"
	StatusDone       Status = "Done"
)

// AllStatuses returns every status in board column order.
func AllStatuses() []Status {
	return []Status{
		StatusBacklog,
		StatusPlanned,
		StatusInProgress,
		StatusBlocked,
		StatusReview,
		StatusDone,
	}
}

// IsValid returns true if the status is one of the board columns.
func (s Status) IsValid() bool {
	switch s {
	case StatusBacklog, StatusPlanned, StatusInProgress, StatusBlocked, StatusReview, StatusDone:
		return true
	default:
		return false
	}
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsReview returns true for the column that is mirrored to the remote task list.
func (s Status) IsReview() bool {
	return s == StatusReview
}

// IsDone returns true if the task is finished.
func (s Status) IsDone() bool {
	return s == StatusDone
}

// ParseStatus parses a string into a Status.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", &ValidationError{Reason: "invalid task status " + strconv.Quote(s)}
	}
	return status, nil
}

// MarshalJSON implements json.Marshaler interface.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

// UnmarshalJSON implements json.Unmarshaler interface.
func (s *Status) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	// Empty is left for validation to report as a missing field.
	if str == "" {
		*s = ""
		return nil
	}

	status := Status(str)
	if !status.IsValid() {
		return fmt.Errorf("invalid task status: %s", str)
	}

	*s = status
	return nil
}
