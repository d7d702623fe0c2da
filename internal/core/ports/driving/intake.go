package driving

import "context"

// IntakeOrchestrator coordinates document discovery for engagements.
type IntakeOrchestrator interface {
	// SyncEngagement discovers new remote files for one engagement,
	// creates placeholder documents and dispatches processing for
	// them. Returns domain.ErrSyncInProgress if a sync for the same
	// engagement is already running in this process.
	SyncEngagement(ctx context.Context, engagementID string) (*SyncReport, error)

	// SyncAll syncs every eligible engagement. One engagement's
	// failure never aborts the others; failures are reported per
	// engagement in the summary.
	SyncAll(ctx context.Context) (*PollSummary, error)

	// RetryDocument resets a failed or stuck document to pending and
	// re-dispatches processing.
	RetryDocument(ctx context.Context, engagementID, documentID string) error
}

// SyncReport summarises one engagement sync.
type SyncReport struct {
	// EngagementID identifies the engagement.
	EngagementID string

	// FilesSeen is how many remote entries the provider returned.
	FilesSeen int

	// NewDocuments is how many placeholder documents were created.
	NewDocuments int

	// ArchivedDocuments is how many documents were archived because
	// the provider reported their remote files deleted.
	ArchivedDocuments int
}

// PollSummary summarises one pass over all eligible engagements.
type PollSummary struct {
	// Synced is how many engagements synced without error.
	Synced int

	// Failed maps engagement IDs to their failure messages.
	Failed map[string]string
}
