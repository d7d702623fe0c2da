package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "Manage collected documents",
}

var documentsListCmd = &cobra.Command{
	Use:   "list [engagement-id]",
	Short: "List an engagement's documents",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsList,
}

var documentsRetryCmd = &cobra.Command{
	Use:   "retry [engagement-id] [document-id]",
	Short: "Re-run processing for a failed or stuck document",
	Args:  cobra.ExactArgs(2),
	RunE:  runDocumentsRetry,
}

var listArchived bool

func init() {
	documentsListCmd.Flags().BoolVarP(&listArchived, "archived", "a", false, "include archived documents")

	documentsCmd.AddCommand(documentsListCmd)
	documentsCmd.AddCommand(documentsRetryCmd)
	rootCmd.AddCommand(documentsCmd)
}

func runDocumentsList(cmd *cobra.Command, args []string) error {
	if engagementStore == nil {
		return errors.New("store not configured")
	}

	engagement, err := engagementStore.Get(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get engagement: %w", err)
	}

	shown := 0
	for i := range engagement.Documents {
		doc := &engagement.Documents[i]
		if doc.Archived && !listArchived {
			continue
		}
		shown++

		marker := " "
		if doc.Archived {
			marker = "A"
		}
		cmd.Printf("%s %s  %-11s %-16s %s\n", marker, doc.ID, doc.ProcessingStatus, doc.Type, doc.FileName)
		for _, issue := range doc.FriendlyIssues {
			cmd.Printf("      %s\n", issue)
		}
	}

	if shown == 0 {
		cmd.Println("No documents.")
		return nil
	}
	cmd.Printf("Total: %d document(s)\n", shown)
	return nil
}

func runDocumentsRetry(cmd *cobra.Command, args []string) error {
	if intakeService == nil {
		return errors.New("intake service not configured")
	}

	engagementID, documentID := args[0], args[1]
	if err := intakeService.RetryDocument(context.Background(), engagementID, documentID); err != nil {
		return fmt.Errorf("retry failed: %w", err)
	}
	cmd.Printf("Document %s reset for reprocessing\n", documentID)
	return nil
}
