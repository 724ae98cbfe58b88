package board

import "fmt"

// SyncAction is the remote call a status transition requires.
type SyncAction string

const (
	SyncNone     SyncAction = "none"
	SyncCreate   SyncAction = "create"
	SyncComplete SyncAction = "complete"
	SyncDelete   SyncAction = "delete"
)

// DecideSync maps one status transition to at most one remote call.
//
//	to Review from elsewhere, not linked  -> create
//	from Review to Done, linked           -> complete
//	from Review elsewhere, linked         -> delete
//	anything else                         -> none
func DecideSync(from, to Status, externalID string) (SyncAction, error) {
	if from == to {
		return SyncNone, nil
	}

	link, err := NewReviewLink(externalID != "", from, to)
	if err != nil {
		return SyncNone, err
	}

	switch {
	case to.IsReview():
		if link.Send(EventEnterReview) {
			return SyncCreate, nil
		}
	case from.IsReview():
		if link.Send(EventLeaveReview) {
			if to.IsDone() {
				return SyncComplete, nil
			}
			return SyncDelete, nil
		}
	}
	return SyncNone, nil
}

// RemoteTitle is the title used for the remote review task.
func RemoteTitle(t *Task) string {
	return "Review: " + t.Title
}

// RemoteNotes is the notes body used for the remote review task.
func RemoteNotes(t *Task) string {
	return fmt.Sprintf("%s\n\nKanban Board Task ID: %s", t.Description, t.ID)
}
