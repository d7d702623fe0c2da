package domain

import "time"

// ItemStatus mirrors one checklist item's status inside a snapshot.
type ItemStatus struct {
	ItemID string
	Title  string
	Status ChecklistStatus
}

// Reconciliation is a completion snapshot over (checklist, documents).
// It is recomputed wholesale on every pass, never incrementally patched.
type Reconciliation struct {
	// CompletionPercent is the priority-weighted completion in [0,100].
	CompletionPercent int

	// Items mirrors the checklist item statuses at computation time.
	Items []ItemStatus

	// Issues aggregates encoded issue strings from matched documents.
	Issues []string

	// ComputedAt is when this snapshot was produced.
	ComputedAt time.Time
}

// IsReady reports whether every checklist item is complete.
func (r *Reconciliation) IsReady() bool {
	return r.CompletionPercent >= 100
}

// Reconcile computes a completion snapshot from a checklist and the
// engagement's documents. It is a pure function: no I/O, no store access.
//
// Per item: complete if at least one matched, non-archived document has
// no error-severity issues; received if matched but every match carries
// error issues; pending if unmatched. Matching itself is recorded by the
// external classification service as item DocumentIDs - this engine only
// consumes the recorded associations.
//
// Completion is a priority-weighted sum, normalised per engagement so an
// all-complete checklist is exactly 100 regardless of tier mix.
func Reconcile(checklist []ChecklistItem, documents []Document) Reconciliation {
	byID := make(map[string]*Document, len(documents))
	for i := range documents {
		byID[documents[i].ID] = &documents[i]
	}

	recon := Reconciliation{
		Items:      make([]ItemStatus, 0, len(checklist)),
		ComputedAt: time.Now(),
	}

	totalWeight := 0
	earnedWeight := 0
	seenIssues := make(map[string]bool)

	for i := range checklist {
		item := &checklist[i]
		weight := item.Priority.Weight()
		totalWeight += weight

		status := ChecklistPending
		for _, docID := range item.DocumentIDs {
			doc, ok := byID[docID]
			if !ok || doc.Archived {
				continue
			}
			for _, raw := range doc.Issues {
				if !seenIssues[raw] {
					seenIssues[raw] = true
					recon.Issues = append(recon.Issues, raw)
				}
			}
			if doc.HasErrorIssues() {
				if status == ChecklistPending {
					status = ChecklistReceived
				}
				continue
			}
			status = ChecklistComplete
		}

		if status == ChecklistComplete {
			earnedWeight += weight
		}

		item.Status = status
		recon.Items = append(recon.Items, ItemStatus{
			ItemID: item.ID,
			Title:  item.Title,
			Status: status,
		})
	}

	if totalWeight > 0 {
		recon.CompletionPercent = earnedWeight * 100 / totalWeight
	}
	return recon
}
