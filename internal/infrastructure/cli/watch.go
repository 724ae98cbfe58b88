package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/felixgeelhaar/kanban/internal/infrastructure/watch"
	"github.com/felixgeelhaar/kanban/pkg/domain/board"
	"github.com/spf13/cobra"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print column counts whenever the board document changes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		path, err := services.Workspace.Repo.BoardPath()
		if err != nil {
			return err
		}
		// Create the document so there is something to watch.
		tasks, err := services.Tasks.ListTasks(cmd.Context(), "")
		if err != nil {
			return MapError(fmt.Errorf("load board: %w", err))
		}

		fmt.Printf("Watching %s for changes...\n", path)
		fmt.Println(columnCounts(tasks))

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if os.Getenv("KANBAN_WATCH_ONCE") == "true" {
			return nil
		}

		w, err := watch.NewBoardWatcher(path, watchDebounce, func(ev watch.BoardEvent) {
			printBoardChange(ctx, ev, services.Tasks.ListTasks)
		})
		if err != nil {
			return fmt.Errorf("watch board: %w", err)
		}
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func printBoardChange(ctx context.Context, ev watch.BoardEvent, list listFunc) {
	fmt.Printf("\nBoard %s at %s\n", ev.ChangeType, time.Now().Format("15:04:05"))
	tasks, err := list(ctx, "")
	if err != nil {
		fmt.Printf("Could not read board: %v\n", err)
		return
	}
	fmt.Println(columnCounts(tasks))
}

func columnCounts(tasks []board.Task) string {
	parts := make([]string, 0, len(board.AllStatuses()))
	for _, st := range board.AllStatuses() {
		n := 0
		for _, t := range tasks {
			if t.Status == st {
				n++
			}
		}
		parts = append(parts, fmt.Sprintf("%s: %d", st, n))
	}
	return strings.Join(parts, "  ")
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "Quiet period before reporting a change")
	RootCmd.AddCommand(watchCmd)
}
