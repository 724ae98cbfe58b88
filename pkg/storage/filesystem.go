package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/kanban/pkg/domain/board"
)

const KanbanDir = ".kanban"
const BoardFile = "board.json"
const ConfigFile = "config.yaml"

// FilesystemRepository stores the whole board as one JSON document under <root>/.kanban.
// Every call re-reads the document; every mutation rewrites it.
type FilesystemRepository struct {
	root        string
	boardFile   string
	retryConfig retry.Config
	clock       func() time.Time
}

// Option customises a FilesystemRepository.
type Option func(*FilesystemRepository)

// WithBoardFile overrides the document file name inside .kanban.
func WithBoardFile(name string) Option {
	return func(r *FilesystemRepository) {
		if name != "" {
			r.boardFile = name
		}
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(clock func() time.Time) Option {
	return func(r *FilesystemRepository) {
		if clock != nil {
			r.clock = clock
		}
	}
}

func NewFilesystemRepository(root string, opts ...Option) *FilesystemRepository {
	r := &FilesystemRepository{
		root:      root,
		boardFile: BoardFile,
		retryConfig: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  10 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
		},
		clock: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Root returns the workspace root directory.
func (r *FilesystemRepository) Root() string {
	return r.root
}

// BoardPath returns the resolved path of the board document.
func (r *FilesystemRepository) BoardPath() (string, error) {
	return r.ResolvePath(r.boardFile)
}

// ResolvePath ensures the path is within the .kanban directory and prevents traversal.
func (r *FilesystemRepository) ResolvePath(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename cannot be empty")
	}

	baseDir := filepath.Join(r.root, KanbanDir)
	fullPath := filepath.Join(baseDir, filename)
	cleanPath := filepath.Clean(fullPath)

	if !strings.HasPrefix(cleanPath, baseDir) || filepath.Dir(cleanPath) != baseDir {
		return "", fmt.Errorf("invalid file path: %s", filename)
	}

	return cleanPath, nil
}

func (r *FilesystemRepository) Initialize() error {
	path := filepath.Join(r.root, KanbanDir)
	// G301: Use 0700 for directories
	if err := os.MkdirAll(path, 0700); err != nil {
		return fmt.Errorf("failed to create .kanban directory: %w", err)
	}
	return nil
}

func (r *FilesystemRepository) IsInitialized() bool {
	_, err := os.Stat(filepath.Join(r.root, KanbanDir))
	return err == nil
}

// LoadBoard reads the board document, creating an empty one on first use.
func (r *FilesystemRepository) LoadBoard(ctx context.Context) (*board.Board, error) {
	path, err := r.BoardPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		b := board.NewBoard(r.clock())
		if err := r.SaveBoard(b); err != nil {
			return nil, err
		}
		return b, nil
	}

	retryer := retry.New[*board.Board](r.retryConfig)
	return retryer.Do(ctx, func(ctx context.Context) (*board.Board, error) {
		// #nosec G304 -- Path is resolved and validated via ResolvePath
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read board file: %w", err)
		}

		var b board.Board
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, fmt.Errorf("failed to unmarshal board: %w", err)
		}
		if b.Tasks == nil {
			b.Tasks = []board.Task{}
		}
		return &b, nil
	})
}

// SaveBoard stamps lastUpdated and replaces the document in one rename.
func (r *FilesystemRepository) SaveBoard(b *board.Board) error {
	if err := r.Initialize(); err != nil {
		return err
	}
	path, err := r.BoardPath()
	if err != nil {
		return err
	}

	b.LastUpdated = r.clock()
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal board: %w", err)
	}

	tmp := path + ".tmp"
	// G306: Use 0600 for files
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write board file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace board file: %w", err)
	}
	return nil
}

func (r *FilesystemRepository) List(ctx context.Context) ([]board.Task, error) {
	b, err := r.LoadBoard(ctx)
	if err != nil {
		return nil, err
	}
	return b.Tasks, nil
}

func (r *FilesystemRepository) Get(ctx context.Context, id string) (*board.Task, error) {
	b, err := r.LoadBoard(ctx)
	if err != nil {
		return nil, err
	}
	i := b.Find(id)
	if i < 0 {
		return nil, &board.NotFoundError{ID: id}
	}
	t := b.Tasks[i]
	return &t, nil
}

func (r *FilesystemRepository) Create(ctx context.Context, in board.TaskInput) (*board.Task, error) {
	task, err := board.NewTask(in, r.clock())
	if err != nil {
		return nil, err
	}
	return r.Insert(ctx, *task)
}

func (r *FilesystemRepository) Insert(ctx context.Context, task board.Task) (*board.Task, error) {
	b, err := r.LoadBoard(ctx)
	if err != nil {
		return nil, err
	}
	if b.Find(task.ID) >= 0 {
		return nil, &board.ValidationError{Fields: []string{"id"}, Reason: "duplicate task id"}
	}
	task = task.Clone()
	b.Tasks = append(b.Tasks, task)
	if err := r.SaveBoard(b); err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *FilesystemRepository) Update(ctx context.Context, id string, patch board.TaskPatch) (*board.Task, error) {
	b, err := r.LoadBoard(ctx)
	if err != nil {
		return nil, err
	}
	i := b.Find(id)
	if i < 0 {
		return nil, &board.NotFoundError{ID: id}
	}

	if err := b.Tasks[i].Apply(patch, r.clock()); err != nil {
		return nil, err
	}
	if err := r.SaveBoard(b); err != nil {
		return nil, err
	}
	t := b.Tasks[i]
	return &t, nil
}
