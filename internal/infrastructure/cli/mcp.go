package cli

import (
	"fmt"
	"os"
	"strings"

	inframcp "github.com/felixgeelhaar/kanban/internal/infrastructure/mcp"
	"github.com/spf13/cobra"
)

var (
	mcpTransport string
	mcpAddr      string
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Kanban MCP server",
	Long: `Start an MCP server exposing the board as tools:
kanban_list_tasks, kanban_get_task, kanban_create_task, kanban_update_task
and kanban_sync, plus the kanban://board resource.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport := strings.ToLower(mcpTransport)
		if transport != "stdio" && transport != "" && transport != "http" {
			return NewCLIError(fmt.Sprintf("unsupported transport: %s", mcpTransport), "Use stdio or http", nil)
		}

		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		server, err := inframcp.NewServer(services)
		if err != nil {
			return err
		}
		if os.Getenv("KANBAN_SKIP_MCP_START") == "true" {
			return nil
		}

		if transport == "http" {
			return server.ServeHTTP(cmd.Context(), mcpAddr)
		}
		return server.ServeStdio(cmd.Context())
	},
}

func init() {
	mcpCmd.Flags().StringVar(&mcpTransport, "transport", "stdio", "Transport to use (stdio, http)")
	mcpCmd.Flags().StringVar(&mcpAddr, "addr", ":8080", "Address for the http transport")
	RootCmd.AddCommand(mcpCmd)
}
