package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arushs/Formly-sub001/internal/core/domain"
)

var engagementsCmd = &cobra.Command{
	Use:   "engagements",
	Short: "Manage client engagements",
}

var engagementsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all engagements",
	Args:  cobra.NoArgs,
	RunE:  runEngagementsList,
}

var engagementsShowCmd = &cobra.Command{
	Use:   "show [engagement-id]",
	Short: "Show one engagement in detail",
	Args:  cobra.ExactArgs(1),
	RunE:  runEngagementsShow,
}

var engagementsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create an engagement",
	Args:  cobra.NoArgs,
	RunE:  runEngagementsAdd,
}

var (
	addClientName string
	addProvider   string
	addFolderURL  string
)

func init() {
	engagementsAddCmd.Flags().StringVarP(&addClientName, "client", "c", "", "client name (required)")
	engagementsAddCmd.Flags().StringVarP(&addProvider, "provider", "p", "", "storage provider: dropbox, drive, graph or filesystem (required)")
	engagementsAddCmd.Flags().StringVarP(&addFolderURL, "folder-url", "u", "", "client folder URL")
	_ = engagementsAddCmd.MarkFlagRequired("client")
	_ = engagementsAddCmd.MarkFlagRequired("provider")

	engagementsCmd.AddCommand(engagementsListCmd)
	engagementsCmd.AddCommand(engagementsShowCmd)
	engagementsCmd.AddCommand(engagementsAddCmd)
	rootCmd.AddCommand(engagementsCmd)
}

func runEngagementsList(cmd *cobra.Command, _ []string) error {
	if engagementStore == nil {
		return errors.New("store not configured")
	}

	engagements, err := engagementStore.List(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list engagements: %w", err)
	}

	if len(engagements) == 0 {
		cmd.Println("No engagements.")
		return nil
	}

	for i := range engagements {
		e := &engagements[i]
		percent := 0
		if e.Reconciliation != nil {
			percent = e.Reconciliation.CompletionPercent
		}
		cmd.Printf("  %s  %-12s %-11s %3d%%  %s\n",
			e.ID, e.Status, e.Provider, percent, e.ClientName)
	}
	cmd.Printf("Total: %d engagement(s)\n", len(engagements))
	return nil
}

func runEngagementsShow(cmd *cobra.Command, args []string) error {
	if engagementStore == nil {
		return errors.New("store not configured")
	}

	engagement, err := engagementStore.Get(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get engagement: %w", err)
	}

	cmd.Printf("Engagement: %s\n", engagement.ID)
	cmd.Printf("  Client:    %s\n", engagement.ClientName)
	cmd.Printf("  Status:    %s\n", engagement.Status)
	cmd.Printf("  Provider:  %s\n", engagement.Provider)
	if engagement.FolderURL != "" {
		cmd.Printf("  Folder:    %s\n", engagement.FolderURL)
	}
	cmd.Printf("  Documents: %d\n", len(engagement.Documents))
	cmd.Printf("  Reminders: %d\n", engagement.RemindersSent)

	if len(engagement.Checklist) > 0 {
		cmd.Println("\nChecklist:")
		for i := range engagement.Checklist {
			item := &engagement.Checklist[i]
			cmd.Printf("  [%-8s] %-8s %s\n", item.Status, item.Priority, item.Title)
		}
	}

	if engagement.Reconciliation != nil {
		cmd.Printf("\nCompletion: %d%%\n", engagement.Reconciliation.CompletionPercent)
		for _, issue := range engagement.Reconciliation.Issues {
			cmd.Printf("  issue: %s\n", issue)
		}
	}
	return nil
}

func runEngagementsAdd(cmd *cobra.Command, _ []string) error {
	if engagementStore == nil {
		return errors.New("store not configured")
	}
	if providerFactory != nil {
		supported := false
		for _, t := range providerFactory.SupportedTypes() {
			if t == addProvider {
				supported = true
				break
			}
		}
		if !supported {
			return fmt.Errorf("provider %q: %w (supported: %v)",
				addProvider, domain.ErrUnsupportedType, providerFactory.SupportedTypes())
		}
	}

	engagement := domain.NewEngagement(addClientName, addProvider)
	engagement.FolderURL = addFolderURL

	if err := engagementStore.Save(context.Background(), engagement); err != nil {
		return fmt.Errorf("failed to save engagement: %w", err)
	}
	cmd.Printf("Created engagement %s\n", engagement.ID)
	return nil
}
