package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/kanban/pkg/infrastructure/api"
	"github.com/spf13/cobra"
)

var (
	serveAddr      string
	serveLogFormat string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and the web board",
	Long: `Start the HTTP API and the drag-and-drop web board.

The address defaults to server.addr from the config (":3000").
Stops gracefully on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices(serveLogFormat, true)
		if err != nil {
			return err
		}
		cfg := services.Workspace.Config

		addr := serveAddr
		if addr == "" {
			addr = cfg.Server.Addr
		}

		if os.Getenv("KANBAN_SKIP_SERVE_RUN") == "true" {
			fmt.Printf("Would serve on %s\n", addr)
			return nil
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		server, err := api.NewServer(services.Tasks, services.Reconcile, services.Workspace.Logger)
		if err != nil {
			return err
		}
		services.Workspace.Logger.Info("serving board", "addr", addr, "board", services.Workspace.Root)
		if err := server.Start(ctx, addr); err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")
	serveCmd.Flags().StringVar(&serveLogFormat, "log-format", "", "Log format: text or json (overrides server.log_format)")
	RootCmd.AddCommand(serveCmd)
}
