// Package api serves the board over HTTP: the task REST endpoints and the
// embedded drag-and-drop board page.
package api

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/felixgeelhaar/kanban/pkg/application"
	"github.com/felixgeelhaar/kanban/pkg/domain/board"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

//go:embed web/*
var webFS embed.FS

// ShutdownTimeout bounds graceful shutdown.
const ShutdownTimeout = 10 * time.Second

// TaskService is the task lifecycle the API exposes.
type TaskService interface {
	ListTasks(ctx context.Context, status board.Status) ([]board.Task, error)
	GetTask(ctx context.Context, id string) (*board.Task, error)
	CreateTask(ctx context.Context, in board.TaskInput) (*application.MutationResult, error)
	UpdateTask(ctx context.Context, id string, patch board.TaskPatch) (*application.MutationResult, error)
}

// Reconciler runs one reconciliation pass.
type Reconciler interface {
	Reconcile(ctx context.Context) (*application.SyncSummary, error)
}

// Server is the board HTTP server.
type Server struct {
	echo   *echo.Echo
	logger *slog.Logger
}

// NewServer builds the echo instance with every route registered.
func NewServer(tasks TaskService, reconciler Reconciler, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(logger)

	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Debug("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			)
			return nil
		},
	}))

	if err := Register(e, tasks, reconciler); err != nil {
		return nil, err
	}

	return &Server{echo: e, logger: logger}, nil
}

// Register wires the API routes and the board page onto e.
func Register(e *echo.Echo, tasks TaskService, reconciler Reconciler) error {
	e.GET("/tasks", listTasks(tasks))
	e.POST("/tasks", createTask(tasks))
	e.POST("/tasks/sync", syncTasks(reconciler))
	e.GET("/tasks/:id", getTask(tasks))
	e.PATCH("/tasks/:id", updateTask(tasks))
	e.GET("/healthz", healthz())

	web, err := fs.Sub(webFS, "web")
	if err != nil {
		return fmt.Errorf("failed to load board page: %w", err)
	}
	e.GET("/", echo.WrapHandler(http.FileServer(http.FS(web))))
	return nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("board server starting", "addr", addr)
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	s.logger.Info("board server shutting down")
	return s.Shutdown(shutdownCtx)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
