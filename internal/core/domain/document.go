package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProcessingStatus tracks a document through the intake lifecycle.
type ProcessingStatus string

const (
	// ProcessingPending is the initial state of a placeholder document.
	ProcessingPending ProcessingStatus = "pending"
	// ProcessingDownloading means the file is being fetched from the provider.
	ProcessingDownloading ProcessingStatus = "downloading"
	// ProcessingExtracting means the extraction service is running.
	ProcessingExtracting ProcessingStatus = "extracting"
	// ProcessingClassifying means classification is running.
	ProcessingClassifying ProcessingStatus = "classifying"
	// ProcessingClassified is the successful terminal state.
	ProcessingClassified ProcessingStatus = "classified"
	// ProcessingError is the failure state. It is retry-eligible,
	// not permanently terminal.
	ProcessingError ProcessingStatus = "error"
)

// DocumentType is the fixed classification vocabulary.
type DocumentType string

const (
	DocTypePending      DocumentType = "PENDING"
	DocTypeW2           DocumentType = "W2"
	DocType1099INT      DocumentType = "1099-INT"
	DocType1099DIV      DocumentType = "1099-DIV"
	DocType1099B        DocumentType = "1099-B"
	DocType1099NEC      DocumentType = "1099-NEC"
	DocType1099R        DocumentType = "1099-R"
	DocType1098         DocumentType = "1098"
	DocType1098T        DocumentType = "1098-T"
	DocTypeK1           DocumentType = "K1"
	DocTypePropertyTax  DocumentType = "PROPERTY_TAX"
	DocTypeCharitable   DocumentType = "CHARITABLE"
	DocTypeMedical      DocumentType = "MEDICAL"
	DocTypeBusinessExp  DocumentType = "BUSINESS_EXPENSE"
	DocTypePriorReturn  DocumentType = "PRIOR_RETURN"
	DocTypeOther        DocumentType = "OTHER"
	DocTypeUnclassified DocumentType = "UNCLASSIFIED"
)

// StuckProcessingThreshold is how long a document may sit in a
// non-terminal processing state before a retry is permitted.
const StuckProcessingThreshold = 15 * time.Minute

// Document represents one collected file.
//
// A document is created as a placeholder the moment a new remote file is
// observed, mutated in place through every lifecycle state, and never
// deleted - only marked archived (e.g. when superseded by a corrected
// re-upload).
//
// Invariant: StorageItemID is unique within an engagement's document
// list. It is the dedup key against freshly listed remote files.
type Document struct {
	// ID is the locally generated identifier, stable for the
	// document's life.
	ID string

	// FileName is the remote file name at discovery time.
	FileName string

	// StorageItemID is the provider-specific remote item id.
	StorageItemID string

	// Type is the classification result, or DocTypePending.
	Type DocumentType

	// Confidence is the extraction confidence score in [0,1].
	Confidence float64

	// TaxYear is the detected tax year, if any.
	TaxYear *int

	// Issues are encoded issue strings in "[SEVERITY:type:expected:detected] text" form.
	Issues []string

	// FriendlyIssues caches human-readable renderings of Issues.
	FriendlyIssues []string

	// ProcessingStatus is the current lifecycle state.
	ProcessingStatus ProcessingStatus

	// ProcessingStartedAt is when processing last began. Used to detect
	// stuck processing; nil when idle.
	ProcessingStartedAt *time.Time

	// ClassifiedAt is when classification last completed. Nil until then.
	ClassifiedAt *time.Time

	// Approved indicates a reviewer has accepted the classification.
	Approved bool

	// ApprovedAt is when approval happened.
	ApprovedAt *time.Time

	// ApprovalOverride records a manual type override at approval time.
	ApprovalOverride string

	// Archived indicates the document was superseded or withdrawn.
	Archived bool

	// ArchivedAt is when the document was archived.
	ArchivedAt *time.Time

	// ArchiveReason explains why the document was archived.
	ArchiveReason string

	// CreatedAt is when the placeholder was created.
	CreatedAt time.Time
}

// NewPlaceholderDocument creates a pending document for a newly
// observed remote file.
func NewPlaceholderDocument(fileName, storageItemID string) Document {
	return Document{
		ID:               uuid.NewString(),
		FileName:         fileName,
		StorageItemID:    storageItemID,
		Type:             DocTypePending,
		ProcessingStatus: ProcessingPending,
		CreatedAt:        time.Now(),
	}
}

// Retryable reports whether the document may be reset for another
// processing attempt: either it failed, or it has been stuck in a
// non-terminal state longer than StuckProcessingThreshold.
func (d *Document) Retryable(now time.Time) bool {
	if d.ProcessingStatus == ProcessingError {
		return true
	}
	switch d.ProcessingStatus {
	case ProcessingDownloading, ProcessingExtracting, ProcessingClassifying:
		return d.ProcessingStartedAt != nil && now.Sub(*d.ProcessingStartedAt) > StuckProcessingThreshold
	default:
		return false
	}
}

// ResetForRetry returns the document to pending for reprocessing.
// Classification state is cleared; approval and archive history is
// preserved across reclassification.
func (d *Document) ResetForRetry() {
	d.ProcessingStatus = ProcessingPending
	d.Type = DocTypePending
	d.Confidence = 0
	d.Issues = nil
	d.FriendlyIssues = nil
	d.ClassifiedAt = nil
	d.ProcessingStartedAt = nil
}

// Archive marks the document archived with a reason. Archiving is
// idempotent; the first timestamp wins.
func (d *Document) Archive(reason string) {
	if d.Archived {
		return
	}
	now := time.Now()
	d.Archived = true
	d.ArchivedAt = &now
	d.ArchiveReason = reason
}

// HasErrorIssues reports whether any recorded issue parses to error severity.
func (d *Document) HasErrorIssues() bool {
	for _, raw := range d.Issues {
		if ParseIssue(raw).Severity == SeverityError {
			return true
		}
	}
	return false
}
