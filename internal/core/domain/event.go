package domain

// EventType identifies a domain event.
type EventType string

// The dispatcher's event vocabulary. Every event carries at minimum a
// type and an engagement id.
const (
	EventEngagementCreated EventType = "engagement_created"
	EventIntakeComplete    EventType = "intake_complete"
	EventDocumentUploaded  EventType = "document_uploaded"
	EventDocumentAssessed  EventType = "document_assessed"
	EventStaleEngagement   EventType = "stale_engagement"
	EventCheckCompletion   EventType = "check_completion"

	// EventEngagementComplete is an outreach trigger, chained by the
	// dispatcher when reconciliation reports readiness. It is never
	// dispatched directly.
	EventEngagementComplete EventType = "engagement_complete"

	// EventDocumentIssues is an outreach trigger, chained when an
	// assessment reports issues.
	EventDocumentIssues EventType = "document_issues"
)

// Event is one domain event flowing through the dispatcher.
type Event struct {
	// Type identifies the event.
	Type EventType

	// EngagementID is the engagement the event concerns.
	EngagementID string

	// DocumentID is set on document-scoped events.
	DocumentID string

	// StorageItemID accompanies document_uploaded.
	StorageItemID string

	// FileName accompanies document_uploaded.
	FileName string

	// DocumentType accompanies document_assessed.
	DocumentType DocumentType

	// HasIssues accompanies document_assessed.
	HasIssues bool
}
