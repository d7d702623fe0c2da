package driven

import (
	"context"

	"github.com/arushs/Formly-sub001/internal/core/domain"
)

// OutreachRequest asks the outreach agent to send client-facing
// communication. Message content is the agent's concern.
type OutreachRequest struct {
	// Trigger names why outreach is happening (an event type such as
	// engagement_complete or document_issues).
	Trigger domain.EventType

	// EngagementID is the engagement concerned.
	EngagementID string

	// AdditionalContext carries optional free-text context for the
	// message (e.g. a document name).
	AdditionalContext string
}

// OutreachAgent sends client-facing communication.
// The dispatcher consumes no return value.
type OutreachAgent interface {
	Run(ctx context.Context, req OutreachRequest) error
}

// AssessmentRequest asks the assessment agent to process one document.
type AssessmentRequest struct {
	Trigger       domain.EventType
	EngagementID  string
	DocumentID    string
	StorageItemID string
	FileName      string
}

// AssessmentResult is what the dispatcher chains on.
type AssessmentResult struct {
	// HasIssues reports whether the document carries any issues.
	HasIssues bool

	// DocumentType is the classification outcome.
	DocumentType domain.DocumentType
}

// AssessmentAgent drives one document through download, extraction and
// classification, persisting its findings before returning.
type AssessmentAgent interface {
	Run(ctx context.Context, req AssessmentRequest) (*AssessmentResult, error)
}

// ReconciliationRequest asks the reconciliation agent to recompute
// completion for an engagement.
type ReconciliationRequest struct {
	Trigger      domain.EventType
	EngagementID string
	DocumentID   string
	DocumentType domain.DocumentType
}

// ReconciliationResult is what the dispatcher chains on.
type ReconciliationResult struct {
	// IsReady reports whether the checklist is fully satisfied.
	IsReady bool
}

// ReconciliationAgent recomputes and persists the completion snapshot.
type ReconciliationAgent interface {
	Run(ctx context.Context, req ReconciliationRequest) (*ReconciliationResult, error)
}
