package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var syncJSON bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Move reviews completed remotely to Done",
	Long: `Check every linked Review task against the remote review list once.

Tasks whose remote review was completed move to Done and lose their link.
Remote failures are logged and leave the task untouched.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		summary, err := services.Reconcile.Reconcile(cmd.Context())
		if err != nil {
			return MapError(fmt.Errorf("sync tasks: %w", err))
		}

		if syncJSON {
			return printJSON(summary)
		}
		if summary.Synced == 0 {
			fmt.Println("No completed reviews.")
			return nil
		}
		fmt.Printf("Synced %d task(s):\n", summary.Synced)
		for _, u := range summary.Updates {
			fmt.Printf("  %s %s -> %s\n", u.TaskID, u.Title, u.Status)
		}
		return nil
	},
}

func init() {
	syncCmd.Flags().BoolVar(&syncJSON, "json", false, "Output in JSON format")
	RootCmd.AddCommand(syncCmd)
}
