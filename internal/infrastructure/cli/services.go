package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/felixgeelhaar/kanban/internal/infrastructure/wiring"
)

func getProjectRoot() (string, error) {
	if rootPath != "" {
		abs, err := filepath.Abs(rootPath)
		if err != nil {
			return "", fmt.Errorf("invalid workspace path %q: %w", rootPath, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return "", fmt.Errorf("workspace path %q: %w", abs, err)
		}
		if !info.IsDir() {
			return "", fmt.Errorf("workspace path %q is not a directory", abs)
		}
		return abs, nil
	}
	return os.Getwd()
}

func loadServices(logFormat string, serving bool) (*wiring.AppServices, error) {
	root, err := getProjectRoot()
	if err != nil {
		return nil, err
	}
	services, err := wiring.BuildAppServices(wiring.Options{
		Root:       root,
		ConfigPath: configPath,
		LogLevel:   logLevel,
		LogFormat:  logFormat,
		Serving:    serving,
	})
	if err != nil {
		return nil, NewCLIError("failed to load workspace", "Check .kanban/config.yaml or run 'kanban config init'", err)
	}
	return services, nil
}

func loadServicesForCurrentDir() (*wiring.AppServices, error) {
	return loadServices("", false)
}
