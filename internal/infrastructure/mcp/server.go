package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/kanban/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/kanban/pkg/application"
	"github.com/felixgeelhaar/kanban/pkg/domain/board"
	"github.com/felixgeelhaar/mcp-go"
)

const boardResourceURI = "kanban://board"

type Server struct {
	mcpServer    *mcp.Server
	taskSvc      *application.TaskService
	reconcileSvc *application.ReconcileService
}

var (
	Version     = "dev"
	BuildCommit = "unknown"
	BuildDate   = "unknown"
)

// mcpErr returns a user-friendly error for MCP clients.
// Internal details are omitted; only the friendly message is returned.
func mcpErr(friendly string) error {
	return fmt.Errorf("%s", friendly)
}

// NewServer exposes the board services as MCP tools.
func NewServer(services *wiring.AppServices) (*Server, error) {
	if services == nil {
		return nil, fmt.Errorf("services initialization returned nil")
	}

	info := mcp.ServerInfo{
		Name:    "kanban",
		Version: Version,
	}

	s := &Server{
		mcpServer: mcp.NewServer(info,
			mcp.WithTitle("Kanban MCP Server"),
			mcp.WithDescription("Kanban exposes the local task board to MCP clients."),
			mcp.WithBuildInfo(BuildCommit, BuildDate),
			mcp.WithInstructions("Use tools to list, create and move board tasks. Moving a task to Review mirrors it to the review list; kanban_sync pulls completed reviews back."),
		),
		taskSvc:      services.Tasks,
		reconcileSvc: services.Reconcile,
	}

	s.registerTools()
	s.registerBoardResource()
	return s, nil
}

type ListTasksArgs struct {
	Status string `json:"status,omitempty" jsonschema:"description=Only return tasks in this column (Backlog, Planned, In Progress, Blocked, Review, Done)"`
}

type GetTaskArgs struct {
	ID string `json:"id" jsonschema:"description=The task id or a unique prefix of it"`
}

type CreateTaskArgs struct {
	Title       string   `json:"title" jsonschema:"description=Short title of the task"`
	Description string   `json:"description" jsonschema:"description=What needs to be done"`
	Priority    string   `json:"priority" jsonschema:"description=Low, Med or High"`
	Status      string   `json:"status" jsonschema:"description=Initial column (Backlog, Planned, In Progress, Blocked, Review, Done)"`
	Tags        []string `json:"tags,omitempty" jsonschema:"description=Free-form labels"`
	Agent       string   `json:"agent,omitempty" jsonschema:"description=Who is working on the task"`
	BlockReason string   `json:"block_reason,omitempty" jsonschema:"description=Why the task is blocked"`
}

type UpdateTaskArgs struct {
	ID          string    `json:"id" jsonschema:"description=The task id or a unique prefix of it"`
	Title       *string   `json:"title,omitempty" jsonschema:"description=New title"`
	Description *string   `json:"description,omitempty" jsonschema:"description=New description"`
	Priority    *string   `json:"priority,omitempty" jsonschema:"description=Low, Med or High"`
	Status      *string   `json:"status,omitempty" jsonschema:"description=Target column"`
	Tags        *[]string `json:"tags,omitempty" jsonschema:"description=Replacement label list"`
	Agent       *string   `json:"agent,omitempty" jsonschema:"description=Who is working on the task"`
	BlockReason *string   `json:"block_reason,omitempty" jsonschema:"description=Why the task is blocked"`
}

// TaskResult is a task together with the remote sync outcome of the mutation.
type TaskResult struct {
	Task *board.Task `json:"task"`
	Sync string      `json:"sync"`
}

func (s *Server) registerTools() {
	s.mcpServer.Tool("kanban_list_tasks").
		Description("List board tasks in creation order, optionally filtered by column").
		Handler(s.handleListTasks)

	s.mcpServer.Tool("kanban_get_task").
		Description("Retrieve a single task by id or unique id prefix").
		Handler(s.handleGetTask)

	s.mcpServer.Tool("kanban_create_task").
		Description("Create a task. Tasks created in Review are mirrored to the review list").
		Handler(s.handleCreateTask)

	s.mcpServer.Tool("kanban_update_task").
		Description("Update fields of a task. Moving into or out of Review updates the review list").
		Handler(s.handleUpdateTask)

	s.mcpServer.Tool("kanban_sync").
		Description("Move Review tasks whose review was completed remotely to Done").
		Handler(s.handleSync)
}

func (s *Server) handleListTasks(ctx context.Context, args ListTasksArgs) (any, error) {
	var status board.Status
	if args.Status != "" {
		parsed, err := board.ParseStatus(args.Status)
		if err != nil {
			return nil, mcpErr(err.Error())
		}
		status = parsed
	}
	tasks, err := s.taskSvc.ListTasks(ctx, status)
	if err != nil {
		return nil, mcpErr("Failed to load the board. Check that the board file is readable.")
	}
	return tasks, nil
}

func (s *Server) handleGetTask(ctx context.Context, args GetTaskArgs) (any, error) {
	task, err := s.taskSvc.ResolveTask(ctx, args.ID)
	if err != nil {
		return nil, friendly(err, "Failed to load task.")
	}
	return task, nil
}

func (s *Server) handleCreateTask(ctx context.Context, args CreateTaskArgs) (any, error) {
	res, err := s.taskSvc.CreateTask(ctx, board.TaskInput{
		Title:       args.Title,
		Description: args.Description,
		Priority:    board.Priority(args.Priority),
		Status:      board.Status(args.Status),
		Tags:        args.Tags,
		Agent:       args.Agent,
		BlockReason: args.BlockReason,
	})
	if err != nil {
		return nil, friendly(err, "Failed to create task.")
	}
	return TaskResult{Task: res.Task, Sync: describeSync(res.Sync)}, nil
}

func (s *Server) handleUpdateTask(ctx context.Context, args UpdateTaskArgs) (any, error) {
	task, err := s.taskSvc.ResolveTask(ctx, args.ID)
	if err != nil {
		return nil, friendly(err, "Failed to load task.")
	}

	patch := board.TaskPatch{
		Title:       args.Title,
		Description: args.Description,
		Tags:        args.Tags,
		Agent:       args.Agent,
		BlockReason: args.BlockReason,
	}
	if args.Priority != nil {
		p := board.Priority(*args.Priority)
		patch.Priority = &p
	}
	if args.Status != nil {
		st := board.Status(*args.Status)
		patch.Status = &st
	}

	res, err := s.taskSvc.UpdateTask(ctx, task.ID, patch)
	if err != nil {
		return nil, friendly(err, "Failed to update task.")
	}
	return TaskResult{Task: res.Task, Sync: describeSync(res.Sync)}, nil
}

func (s *Server) handleSync(ctx context.Context, _ struct{}) (any, error) {
	summary, err := s.reconcileSvc.Reconcile(ctx)
	if err != nil {
		return nil, mcpErr("Failed to sync tasks. Check that the board file is readable.")
	}
	return summary, nil
}

// friendly keeps domain messages, which are safe to show, and hides everything else.
func friendly(err error, fallback string) error {
	var ve *board.ValidationError
	switch {
	case errors.As(err, &ve):
		return mcpErr(ve.Error())
	case errors.Is(err, board.ErrTaskNotFound), errors.Is(err, board.ErrAmbiguousID):
		return mcpErr(err.Error())
	}
	return mcpErr(fallback)
}

func describeSync(o application.SyncOutcome) string {
	switch {
	case o.Action == board.SyncNone:
		return "none"
	case o.OK():
		return string(o.Action)
	default:
		return string(o.Action) + " skipped: " + strings.TrimSpace(o.Err.Error())
	}
}

func (s *Server) registerBoardResource() {
	s.mcpServer.Resource(boardResourceURI).
		Name(boardResourceURI).
		Description("The whole board as JSON, grouped by column").
		MimeType("application/json").
		Handler(func(ctx context.Context, _ string, _ map[string]string) (*mcp.ResourceContent, error) {
			tasks, err := s.taskSvc.ListTasks(ctx, "")
			if err != nil {
				return nil, mcpErr("Failed to load the board.")
			}
			data, err := json.Marshal(groupByStatus(tasks))
			if err != nil {
				return nil, err
			}
			return &mcp.ResourceContent{
				URI:      boardResourceURI,
				MimeType: "application/json",
				Text:     string(data),
			}, nil
		})
}

type column struct {
	Status board.Status `json:"status"`
	Tasks  []board.Task `json:"tasks"`
}

func groupByStatus(tasks []board.Task) []column {
	cols := make([]column, 0, len(board.AllStatuses()))
	for _, st := range board.AllStatuses() {
		col := column{Status: st, Tasks: []board.Task{}}
		for _, t := range tasks {
			if t.Status == st {
				col.Tasks = append(col.Tasks, t)
			}
		}
		cols = append(cols, col)
	}
	return cols
}

func (s *Server) ServeStdio(ctx context.Context) error {
	return mcp.ServeStdio(ctx, s.mcpServer)
}

func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	return mcp.ServeHTTP(ctx, s.mcpServer, addr, mcp.WithDefaultCORS())
}
