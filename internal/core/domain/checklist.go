package domain

import "github.com/google/uuid"

// Priority ranks how much a checklist item matters to completion.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Weight returns the relative weight of this priority tier.
// Weights are relative units; the reconciliation engine normalises
// them per engagement so an all-complete checklist sums to 100.
func (p Priority) Weight() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 1
	}
}

// ChecklistStatus tracks one checklist item's progress.
type ChecklistStatus string

const (
	// ChecklistPending means no document has matched the item.
	ChecklistPending ChecklistStatus = "pending"
	// ChecklistReceived means a matched document exists but carries
	// error-severity issues.
	ChecklistReceived ChecklistStatus = "received"
	// ChecklistComplete means a matched document with no
	// error-severity issues exists.
	ChecklistComplete ChecklistStatus = "complete"
)

// ChecklistItem is one expected document category.
// Items are created once by checklist generation and mutated only by
// the reconciliation engine's status recomputation.
type ChecklistItem struct {
	// ID is the unique identifier for the item.
	ID string

	// Title is the short item name shown to the client.
	Title string

	// Rationale explains why the item is expected.
	Rationale string

	// Priority is the weight tier for completion arithmetic.
	Priority Priority

	// Status is the current progress state.
	Status ChecklistStatus

	// DocumentIDs are the associated document identifiers, recorded by
	// the external matching service.
	DocumentIDs []string

	// ExpectedType is the document type this item expects, if known.
	ExpectedType DocumentType
}

// NewChecklistItem creates a pending checklist item.
func NewChecklistItem(title, rationale string, priority Priority) ChecklistItem {
	return ChecklistItem{
		ID:        uuid.NewString(),
		Title:     title,
		Rationale: rationale,
		Priority:  priority,
		Status:    ChecklistPending,
	}
}
