package cli

import (
	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var (
	rootPath   string
	configPath string
	logLevel   string
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "kanban",
	Version: Version,
	Short:   "A single-user kanban board with review sync",
	Long: `Kanban keeps a task board in .kanban/board.json and mirrors tasks in
the Review column to a Google Tasks list. The same board is reachable from
this CLI, the web UI (kanban serve), a terminal view (kanban board) and MCP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() error {
	err := RootCmd.Execute()
	if err != nil {
		printError(RootCmd.ErrOrStderr(), err)
	}
	return err
}

func init() {
	RootCmd.PersistentFlags().StringVar(&rootPath, "root", "", "Workspace directory holding .kanban (default: current directory)")
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: <root>/.kanban/config.yaml)")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
}
