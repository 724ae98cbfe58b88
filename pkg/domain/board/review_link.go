package board

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// Link states and events for the review link machine.
// A task is "linked" while a remote task mirrors it.
const (
	StateUnlinked = "unlinked"
	StateLinked   = "linked"

	EventEnterReview = "enter_review"
	EventLeaveReview = "leave_review"
)

// ReviewContext carries the status transition being evaluated.
type ReviewContext struct {
	From Status
	To   Status
}

// ReviewLink tracks whether a task is linked to a remote task across one status transition.
type ReviewLink struct {
	interpreter *statekit.Interpreter[ReviewContext]
}

// NewReviewLink builds the machine for a transition from -> to, starting linked when the
// task already carries an external id.
func NewReviewLink(linked bool, from, to Status) (*ReviewLink, error) {
	initial := StateUnlinked
	if linked {
		initial = StateLinked
	}

	builder := statekit.NewMachine[ReviewContext]("review-link").
		WithInitial(statekit.StateID(initial)).
		WithContext(ReviewContext{From: from, To: to}).
		WithGuard("entersReview", func(ctx ReviewContext, _ statekit.Event) bool {
			return !ctx.From.IsReview() && ctx.To.IsReview()
		}).
		WithGuard("leavesReview", func(ctx ReviewContext, _ statekit.Event) bool {
			return ctx.From.IsReview() && !ctx.To.IsReview()
		})

	builder.State(StateUnlinked).
		On(EventEnterReview).Target(StateLinked).Guard("entersReview").
		Done()

	builder.State(StateLinked).
		On(EventLeaveReview).Target(StateUnlinked).Guard("leavesReview").
		Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build review link machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()

	return &ReviewLink{interpreter: interpreter}, nil
}

// Send fires the event and reports whether the link state changed.
func (l *ReviewLink) Send(event string) bool {
	before := l.Current()
	l.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	return l.Current() != before
}

// Current returns the current link state.
func (l *ReviewLink) Current() string {
	return string(l.interpreter.State().Value)
}

// IsLinked reports whether the machine ended in the linked state.
func (l *ReviewLink) IsLinked() bool {
	return l.Current() == StateLinked
}
