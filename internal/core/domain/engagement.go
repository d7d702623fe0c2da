package domain

import (
	"time"

	"github.com/google/uuid"
)

// EngagementStatus tracks where a collection case sits in its overall flow.
type EngagementStatus string

const (
	// EngagementPending is a freshly created case awaiting intake.
	EngagementPending EngagementStatus = "PENDING"
	// EngagementIntakeDone means the intake questionnaire is complete
	// and a checklist has been generated.
	EngagementIntakeDone EngagementStatus = "INTAKE_DONE"
	// EngagementCollecting means documents are being gathered.
	EngagementCollecting EngagementStatus = "COLLECTING"
	// EngagementReady means every checklist item is satisfied.
	EngagementReady EngagementStatus = "READY"
	// EngagementComplete means the case has been closed out.
	EngagementComplete EngagementStatus = "COMPLETE"
)

// Engagement represents one client's tax-document collection case.
// It is owned by the persistence layer; orchestration code reads and
// writes it by ID and never holds it across suspension points without
// re-fetching.
type Engagement struct {
	// ID is the unique identifier for the engagement.
	ID string

	// ClientName is the human-readable client name.
	ClientName string

	// Status is the overall case status.
	Status EngagementStatus

	// Provider identifies the storage provider ("dropbox", "drive",
	// "graph", "filesystem").
	Provider string

	// FolderURL is the client-facing folder URL, when known.
	FolderURL string

	// Folder locates the remote folder at the provider.
	Folder FolderLocator

	// SyncCheckpoint is the opaque provider-defined continuation token
	// from the last sync. Never parsed outside the owning provider.
	SyncCheckpoint string

	// Documents are the collected documents, in discovery order.
	Documents []Document

	// Checklist is the expected-document checklist, in generation order.
	Checklist []ChecklistItem

	// Reconciliation is the latest completion snapshot, if any.
	Reconciliation *Reconciliation

	// RemindersSent counts outreach reminders sent for this engagement.
	RemindersSent int

	// LastActivityAt is when anything last happened on this engagement.
	LastActivityAt time.Time

	// CreatedAt is when the engagement was created.
	CreatedAt time.Time

	// UpdatedAt is when the engagement was last updated.
	UpdatedAt time.Time
}

// NewEngagement creates an engagement in the PENDING state.
func NewEngagement(clientName, provider string) *Engagement {
	now := time.Now()
	return &Engagement{
		ID:             uuid.NewString(),
		ClientName:     clientName,
		Status:         EngagementPending,
		Provider:       provider,
		LastActivityAt: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// DocumentByStorageItemID finds a document by its provider item id.
// This is the dedup key against freshly listed remote files.
func (e *Engagement) DocumentByStorageItemID(storageItemID string) *Document {
	for i := range e.Documents {
		if e.Documents[i].StorageItemID == storageItemID {
			return &e.Documents[i]
		}
	}
	return nil
}

// DocumentByID finds a document by its local identifier.
func (e *Engagement) DocumentByID(id string) *Document {
	for i := range e.Documents {
		if e.Documents[i].ID == id {
			return &e.Documents[i]
		}
	}
	return nil
}

// Eligible reports whether the engagement should be polled for new files.
func (e *Engagement) Eligible() bool {
	return e.Status == EngagementCollecting || e.Status == EngagementReady
}

// EngagementPatch describes a field-level partial update.
// Nil fields are left untouched by the store.
type EngagementPatch struct {
	Status         *EngagementStatus
	Folder         *FolderLocator
	SyncCheckpoint *string
	Documents      []Document
	Checklist      []ChecklistItem
	Reconciliation *Reconciliation
	RemindersSent  *int
	LastActivityAt *time.Time
}
