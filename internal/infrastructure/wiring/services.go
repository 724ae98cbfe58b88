package wiring

import (
	"io"
	"log/slog"
	"os"

	"github.com/felixgeelhaar/kanban/internal/infrastructure/config"
	"github.com/felixgeelhaar/kanban/internal/infrastructure/logging"
	"github.com/felixgeelhaar/kanban/pkg/application"
	"github.com/felixgeelhaar/kanban/pkg/domain/remote"
)

// AppServices exposes the application layer services wired together with a workspace.
type AppServices struct {
	Workspace *Workspace
	Remote    remote.TaskList
	Tasks     *application.TaskService
	Reconcile *application.ReconcileService
}

// Options locate the workspace and shape its logger.
type Options struct {
	Root       string
	ConfigPath string

	// LogLevel and LogFormat override the configured values when set.
	LogLevel  string
	LogFormat string
	LogOutput io.Writer

	// Serving selects server.log_format when LogFormat is empty.
	Serving bool

	// Logger replaces the configured logger entirely.
	Logger *slog.Logger
}

// BuildAppServices loads the workspace configuration and wires the services for it.
func BuildAppServices(opts Options) (*AppServices, error) {
	cfg, err := config.Load(opts.Root, opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		level := cfg.Log.Level
		if opts.LogLevel != "" {
			level = opts.LogLevel
		}
		format := opts.LogFormat
		if format == "" && opts.Serving {
			format = cfg.Server.LogFormat
		}
		if format == "" {
			format = logging.FormatText
		}
		out := opts.LogOutput
		if out == nil {
			out = os.Stderr
		}
		logger, err = logging.New(out, level, format)
		if err != nil {
			return nil, err
		}
	}

	return NewAppServices(NewWorkspace(opts.Root, cfg, logger)), nil
}

// NewAppServices wires the services of an already loaded workspace.
func NewAppServices(ws *Workspace) *AppServices {
	tasks := LoadRemote(ws.Config.GoogleTasks, ws.Logger)
	return &AppServices{
		Workspace: ws,
		Remote:    tasks,
		Tasks:     application.NewTaskService(ws.Repo, tasks, ws.Logger),
		Reconcile: application.NewReconcileService(ws.Repo, tasks, ws.Logger),
	}
}
