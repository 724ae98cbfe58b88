package storage

import (
	"context"
	"sync"
	"time"

	"github.com/felixgeelhaar/kanban/pkg/domain/board"
)

// MemoryStore is an in-memory board.Store with the same semantics as the filesystem one.
type MemoryStore struct {
	mu     sync.Mutex
	board  *board.Board
	clock  func() time.Time
	writes int
}

func NewMemoryStore(tasks ...board.Task) *MemoryStore {
	clock := func() time.Time { return time.Now().UTC() }
	b := board.NewBoard(clock())
	for _, t := range tasks {
		b.Tasks = append(b.Tasks, t.Clone())
	}
	return &MemoryStore{board: b, clock: clock}
}

// SetClock overrides the time source used for timestamps.
func (s *MemoryStore) SetClock(clock func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = clock
}

// Writes returns how many times the board has been written.
func (s *MemoryStore) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func (s *MemoryStore) List(_ context.Context) ([]board.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]board.Task, 0, len(s.board.Tasks))
	for _, t := range s.board.Tasks {
		out = append(out, t.Clone())
	}
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*board.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.board.Find(id)
	if i < 0 {
		return nil, &board.NotFoundError{ID: id}
	}
	t := s.board.Tasks[i].Clone()
	return &t, nil
}

func (s *MemoryStore) Create(ctx context.Context, in board.TaskInput) (*board.Task, error) {
	s.mu.Lock()
	task, err := board.NewTask(in, s.clock())
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return s.Insert(ctx, *task)
}

func (s *MemoryStore) Insert(_ context.Context, task board.Task) (*board.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.board.Find(task.ID) >= 0 {
		return nil, &board.ValidationError{Fields: []string{"id"}, Reason: "duplicate task id"}
	}
	s.board.Tasks = append(s.board.Tasks, task.Clone())
	s.save()
	out := task.Clone()
	return &out, nil
}

func (s *MemoryStore) Update(_ context.Context, id string, patch board.TaskPatch) (*board.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.board.Find(id)
	if i < 0 {
		return nil, &board.NotFoundError{ID: id}
	}
	updated := s.board.Tasks[i].Clone()
	if err := updated.Apply(patch, s.clock()); err != nil {
		return nil, err
	}
	s.board.Tasks[i] = updated
	s.save()
	out := updated.Clone()
	return &out, nil
}

func (s *MemoryStore) save() {
	s.board.LastUpdated = s.clock()
	s.writes++
}
