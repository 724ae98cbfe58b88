package wiring

import (
	"log/slog"

	"github.com/felixgeelhaar/kanban/internal/infrastructure/config"
	"github.com/felixgeelhaar/kanban/pkg/domain/remote"
	"github.com/felixgeelhaar/kanban/pkg/infrastructure/googletasks"
)

// LoadRemote returns the Google Tasks adapter when enabled, otherwise remote.Disabled.
// Credential files are only read when a call is made.
func LoadRemote(cfg config.GoogleTasksConfig, logger *slog.Logger) remote.TaskList {
	if !cfg.Enabled {
		return remote.Disabled{}
	}
	return googletasks.NewClient(googletasks.Config{
		TaskListID:      cfg.TaskListID,
		TokenFile:       cfg.TokenFile,
		CredentialsFile: cfg.CredentialsFile,
		Timeout:         cfg.Timeout,
	}, googletasks.WithLogger(logger.With("component", "googletasks")))
}
