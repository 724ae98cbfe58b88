package wiring

import (
	"log/slog"

	"github.com/felixgeelhaar/kanban/internal/infrastructure/config"
	"github.com/felixgeelhaar/kanban/pkg/storage"
)

// Workspace bundles core infrastructure dependencies.
type Workspace struct {
	Root   string
	Config *config.Config
	Repo   *storage.FilesystemRepository
	Logger *slog.Logger
}

func NewWorkspace(root string, cfg *config.Config, logger *slog.Logger) *Workspace {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Workspace{
		Root:   root,
		Config: cfg,
		Repo:   storage.NewFilesystemRepository(root, storage.WithBoardFile(cfg.Storage.BoardFile)),
		Logger: logger,
	}
}
