package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/arushs/Formly-sub001/internal/connectors"
	"github.com/arushs/Formly-sub001/internal/core/ports/driving"
)

var syncWatch bool

var syncCmd = &cobra.Command{
	Use:   "sync [engagement-id]",
	Short: "Sync one engagement's folder",
	Long: `Lists the engagement's remote folder, creates placeholder documents
for new files, and kicks off processing for each of them.`,
	Args: cobra.ExactArgs(1),
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVarP(&syncWatch, "watch", "w", false,
		"keep watching the folder and re-sync on changes (filesystem provider only)")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	if intakeService == nil {
		return errors.New("intake service not configured")
	}

	engagementID := args[0]
	ctx := context.Background()

	report, err := intakeService.SyncEngagement(ctx, engagementID)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	printSyncReport(cmd, report)

	if !syncWatch {
		return nil
	}
	return watchSync(cmd, engagementID)
}

// watchSync re-syncs whenever the provider reports a folder change,
// until interrupted. Only providers that support watching qualify.
func watchSync(cmd *cobra.Command, engagementID string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engagement, err := engagementStore.Get(ctx, engagementID)
	if err != nil {
		return fmt.Errorf("get engagement: %w", err)
	}
	provider, err := providerFactory.Create(ctx, *engagement)
	if err != nil {
		return fmt.Errorf("create provider: %w", err)
	}
	defer provider.Close()

	watcher, ok := provider.(connectors.Watcher)
	if !ok {
		return fmt.Errorf("provider %s does not support watching", provider.Type())
	}

	cmd.Println("Watching for changes. Press Ctrl+C to stop.")
	err = watcher.Watch(ctx, func() {
		report, syncErr := intakeService.SyncEngagement(ctx, engagementID)
		if syncErr != nil {
			cmd.PrintErrf("re-sync failed: %v\n", syncErr)
			return
		}
		if report.NewDocuments > 0 || report.ArchivedDocuments > 0 {
			printSyncReport(cmd, report)
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func printSyncReport(cmd *cobra.Command, report *driving.SyncReport) {
	cmd.Printf("Synced engagement %s\n", report.EngagementID)
	cmd.Printf("  Files seen:  %d\n", report.FilesSeen)
	cmd.Printf("  New:         %d\n", report.NewDocuments)
	cmd.Printf("  Archived:    %d\n", report.ArchivedDocuments)
}
