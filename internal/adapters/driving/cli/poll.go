package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"
)

var pollDaemon bool

var pollCmd = &cobra.Command{
	Use:   "poll",
	Short: "Sync every eligible engagement",
	Long: `Runs one poll cycle over all engagements in a collecting or ready
state. With --daemon, keeps polling on the configured interval and
emits stale-engagement reminders until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runPoll,
}

func init() {
	pollCmd.Flags().BoolVar(&pollDaemon, "daemon", false, "keep polling on the configured interval")
	rootCmd.AddCommand(pollCmd)
}

func runPoll(cmd *cobra.Command, _ []string) error {
	if schedulerService == nil {
		return errors.New("scheduler not configured")
	}

	if pollDaemon {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cmd.Println("Polling. Press Ctrl+C to stop.")
		err := schedulerService.Start(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	summary, err := schedulerService.RunOnce(context.Background())
	if err != nil {
		return fmt.Errorf("poll failed: %w", err)
	}

	cmd.Printf("Synced %d engagement(s)\n", summary.Synced)
	if len(summary.Failed) > 0 {
		cmd.Printf("Failed %d engagement(s):\n", len(summary.Failed))
		ids := make([]string, 0, len(summary.Failed))
		for id := range summary.Failed {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			cmd.Printf("  %s: %s\n", id, summary.Failed[id])
		}
	}
	return nil
}
