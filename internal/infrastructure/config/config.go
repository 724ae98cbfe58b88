// Package config loads the workspace configuration from .kanban/config.yaml
// with KANBAN_ environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/felixgeelhaar/kanban/pkg/storage"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. KANBAN_SERVER_ADDR.
const EnvPrefix = "KANBAN"

// Config is the effective configuration of one workspace.
type Config struct {
	Server      ServerConfig      `mapstructure:"server" yaml:"server"`
	Storage     StorageConfig     `mapstructure:"storage" yaml:"storage"`
	Log         LogConfig         `mapstructure:"log" yaml:"log"`
	GoogleTasks GoogleTasksConfig `mapstructure:"google_tasks" yaml:"google_tasks"`
}

type ServerConfig struct {
	Addr      string `mapstructure:"addr" yaml:"addr"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

type StorageConfig struct {
	BoardFile string `mapstructure:"board_file" yaml:"board_file"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// GoogleTasksConfig controls mirroring of Review tasks into Google Tasks.
type GoogleTasksConfig struct {
	Enabled         bool          `mapstructure:"enabled" yaml:"enabled"`
	TaskListID      string        `mapstructure:"task_list_id" yaml:"task_list_id"`
	TokenFile       string        `mapstructure:"token_file" yaml:"token_file"`
	CredentialsFile string        `mapstructure:"credentials_file" yaml:"credentials_file"`
	Timeout         time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:      ":3000",
			LogFormat: "text",
		},
		Storage: StorageConfig{
			BoardFile: storage.BoardFile,
		},
		Log: LogConfig{
			Level: "info",
		},
		GoogleTasks: GoogleTasksConfig{
			Enabled:         false,
			TaskListID:      "@default",
			TokenFile:       "~/.config/kanban/token.json",
			CredentialsFile: "~/.config/kanban/credentials.json",
			Timeout:         30 * time.Second,
		},
	}
}

// Path returns the default config file location for a workspace root.
func Path(root string) (string, error) {
	return storage.NewFilesystemRepository(root).ResolvePath(storage.ConfigFile)
}

// Load reads the config file at path (the workspace default when empty), applies
// environment overrides and expands home-relative paths. A missing file yields defaults.
func Load(root, path string) (*Config, error) {
	if path == "" {
		p, err := Path(root)
		if err != nil {
			return nil, err
		}
		path = p
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("google_tasks.credentials_file", "KANBAN_GOOGLE_TASKS_CREDENTIALS_FILE", "GOOGLE_APPLICATION_CREDENTIALS"); err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.GoogleTasks.TokenFile = ExpandHome(cfg.GoogleTasks.TokenFile)
	cfg.GoogleTasks.CredentialsFile = ExpandHome(cfg.GoogleTasks.CredentialsFile)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.log_format", d.Server.LogFormat)
	v.SetDefault("storage.board_file", d.Storage.BoardFile)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("google_tasks.enabled", d.GoogleTasks.Enabled)
	v.SetDefault("google_tasks.task_list_id", d.GoogleTasks.TaskListID)
	v.SetDefault("google_tasks.token_file", d.GoogleTasks.TokenFile)
	v.SetDefault("google_tasks.credentials_file", d.GoogleTasks.CredentialsFile)
	v.SetDefault("google_tasks.timeout", d.GoogleTasks.Timeout)
}

// Validate rejects values the rest of the program cannot act on.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q (use debug, info, warn or error)", c.Log.Level)
	}
	switch c.Server.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid server log_format %q (use text or json)", c.Server.LogFormat)
	}
	if c.Storage.BoardFile == "" || filepath.Base(c.Storage.BoardFile) != c.Storage.BoardFile {
		return fmt.Errorf("invalid storage board_file %q: must be a plain file name", c.Storage.BoardFile)
	}
	if c.GoogleTasks.Timeout <= 0 {
		return fmt.Errorf("invalid google_tasks timeout %s", c.GoogleTasks.Timeout)
	}
	return nil
}

// Save writes cfg as YAML to the workspace config file.
func Save(root string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	repo := storage.NewFilesystemRepository(root)
	if err := repo.Initialize(); err != nil {
		return err
	}
	path, err := repo.ResolvePath(storage.ConfigFile)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
