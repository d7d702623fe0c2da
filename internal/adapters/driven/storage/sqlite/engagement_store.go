package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/arushs/Formly-sub001/internal/core/domain"
	"github.com/arushs/Formly-sub001/internal/core/ports/driven"
)

// engagementStore implements driven.EngagementStore.
type engagementStore struct {
	store *Store
}

var _ driven.EngagementStore = (*engagementStore)(nil)

// storedDocument is the persisted JSON shape of a document. The shape
// is explicit so legacy rows with missing fields load with explicit
// defaults instead of ad hoc inference.
type storedDocument struct {
	ID                  string     `json:"id"`
	FileName            string     `json:"fileName"`
	StorageItemID       string     `json:"storageItemId"`
	Type                string     `json:"type"`
	Confidence          float64    `json:"confidence"`
	TaxYear             *int       `json:"taxYear,omitempty"`
	Issues              []string   `json:"issues,omitempty"`
	FriendlyIssues      []string   `json:"friendlyIssues,omitempty"`
	ProcessingStatus    string     `json:"processingStatus,omitempty"`
	ProcessingStartedAt *time.Time `json:"processingStartedAt,omitempty"`
	ClassifiedAt        *time.Time `json:"classifiedAt,omitempty"`
	Approved            bool       `json:"approved"`
	ApprovedAt          *time.Time `json:"approvedAt,omitempty"`
	ApprovalOverride    string     `json:"approvalOverride,omitempty"`
	Archived            bool       `json:"archived"`
	ArchivedAt          *time.Time `json:"archivedAt,omitempty"`
	ArchiveReason       string     `json:"archiveReason,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
}

// storedChecklistItem is the persisted JSON shape of a checklist item.
type storedChecklistItem struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Rationale    string   `json:"rationale,omitempty"`
	Priority     string   `json:"priority"`
	Status       string   `json:"status,omitempty"`
	DocumentIDs  []string `json:"documentIds,omitempty"`
	ExpectedType string   `json:"expectedType,omitempty"`
}

// storedReconciliation is the persisted JSON shape of a snapshot.
type storedReconciliation struct {
	CompletionPercent int                `json:"completionPercent"`
	Items             []storedItemStatus `json:"items,omitempty"`
	Issues            []string           `json:"issues,omitempty"`
	ComputedAt        time.Time          `json:"computedAt"`
}

type storedItemStatus struct {
	ItemID string `json:"itemId"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

// Get retrieves an engagement by ID.
func (s *engagementStore) Get(ctx context.Context, id string) (*domain.Engagement, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, client_name, status, provider, folder_url, folder_id, drive_id, shared_link,
		       sync_checkpoint, documents, checklist, reconciliation, reminders_sent,
		       last_activity_at, created_at, updated_at
		FROM engagements WHERE id = ?
	`, id)

	engagement, err := scanEngagement(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return engagement, nil
}

// List returns all engagements.
func (s *engagementStore) List(ctx context.Context) ([]domain.Engagement, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, client_name, status, provider, folder_url, folder_id, drive_id, shared_link,
		       sync_checkpoint, documents, checklist, reconciliation, reminders_sent,
		       last_activity_at, created_at, updated_at
		FROM engagements ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("querying engagements: %w", err)
	}
	defer rows.Close()

	var engagements []domain.Engagement //nolint:prealloc // size unknown from query
	for rows.Next() {
		engagement, err := scanEngagement(rows.Scan)
		if err != nil {
			return nil, err
		}
		engagements = append(engagements, *engagement)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating engagements: %w", err)
	}
	return engagements, nil
}

// Save stores a new engagement or replaces an existing one.
func (s *engagementStore) Save(ctx context.Context, engagement *domain.Engagement) error {
	if engagement == nil {
		return domain.ErrInvalidInput
	}
	engagement.UpdatedAt = time.Now()

	documentsJSON, checklistJSON, reconJSON, err := encodeEngagementJSON(engagement)
	if err != nil {
		return err
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO engagements (id, client_name, status, provider, folder_url, folder_id,
			drive_id, shared_link, sync_checkpoint, documents, checklist, reconciliation,
			reminders_sent, last_activity_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			client_name = excluded.client_name,
			status = excluded.status,
			provider = excluded.provider,
			folder_url = excluded.folder_url,
			folder_id = excluded.folder_id,
			drive_id = excluded.drive_id,
			shared_link = excluded.shared_link,
			sync_checkpoint = excluded.sync_checkpoint,
			documents = excluded.documents,
			checklist = excluded.checklist,
			reconciliation = excluded.reconciliation,
			reminders_sent = excluded.reminders_sent,
			last_activity_at = excluded.last_activity_at,
			updated_at = excluded.updated_at
	`, engagement.ID, engagement.ClientName, string(engagement.Status), engagement.Provider,
		engagement.FolderURL, engagement.Folder.FolderID, engagement.Folder.DriveID,
		engagement.Folder.SharedLink, engagement.SyncCheckpoint, documentsJSON, checklistJSON,
		reconJSON, engagement.RemindersSent, formatNullableTime(engagement.LastActivityAt),
		engagement.CreatedAt.Format(time.RFC3339Nano), engagement.UpdatedAt.Format(time.RFC3339Nano))

	if err != nil {
		return fmt.Errorf("saving engagement: %w", err)
	}
	return nil
}

// Update applies a field-level partial update inside a transaction.
// Nil patch fields are left untouched. The documents and checklist
// columns are overwritten wholesale when present in the patch.
func (s *engagementStore) Update(ctx context.Context, id string, patch domain.EngagementPatch) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning update: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	row := tx.QueryRowContext(ctx, `
		SELECT id, client_name, status, provider, folder_url, folder_id, drive_id, shared_link,
		       sync_checkpoint, documents, checklist, reconciliation, reminders_sent,
		       last_activity_at, created_at, updated_at
		FROM engagements WHERE id = ?
	`, id)
	engagement, err := scanEngagement(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}

	applyPatch(engagement, patch)
	engagement.UpdatedAt = time.Now()

	documentsJSON, checklistJSON, reconJSON, err := encodeEngagementJSON(engagement)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE engagements SET
			status = ?, folder_id = ?, drive_id = ?, shared_link = ?, sync_checkpoint = ?,
			documents = ?, checklist = ?, reconciliation = ?, reminders_sent = ?,
			last_activity_at = ?, updated_at = ?
		WHERE id = ?
	`, string(engagement.Status), engagement.Folder.FolderID, engagement.Folder.DriveID,
		engagement.Folder.SharedLink, engagement.SyncCheckpoint, documentsJSON, checklistJSON,
		reconJSON, engagement.RemindersSent, formatNullableTime(engagement.LastActivityAt),
		engagement.UpdatedAt.Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("updating engagement: %w", err)
	}

	return tx.Commit()
}

// Delete removes an engagement.
func (s *engagementStore) Delete(ctx context.Context, id string) error {
	result, err := s.store.db.ExecContext(ctx, "DELETE FROM engagements WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting engagement: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting engagement: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// applyPatch folds a patch into an engagement in place.
func applyPatch(engagement *domain.Engagement, patch domain.EngagementPatch) {
	if patch.Status != nil {
		engagement.Status = *patch.Status
	}
	if patch.Folder != nil {
		engagement.Folder = *patch.Folder
	}
	if patch.SyncCheckpoint != nil {
		engagement.SyncCheckpoint = *patch.SyncCheckpoint
	}
	if patch.Documents != nil {
		engagement.Documents = patch.Documents
	}
	if patch.Checklist != nil {
		engagement.Checklist = patch.Checklist
	}
	if patch.Reconciliation != nil {
		engagement.Reconciliation = patch.Reconciliation
	}
	if patch.RemindersSent != nil {
		engagement.RemindersSent = *patch.RemindersSent
	}
	if patch.LastActivityAt != nil {
		engagement.LastActivityAt = *patch.LastActivityAt
	}
}

// encodeEngagementJSON serialises the JSON columns.
func encodeEngagementJSON(engagement *domain.Engagement) (documents, checklist string, recon sql.NullString, err error) {
	stored := make([]storedDocument, len(engagement.Documents))
	for i, doc := range engagement.Documents {
		stored[i] = toStoredDocument(doc)
	}
	documentsJSON, err := json.Marshal(stored)
	if err != nil {
		return "", "", sql.NullString{}, fmt.Errorf("marshalling documents: %w", err)
	}

	items := make([]storedChecklistItem, len(engagement.Checklist))
	for i, item := range engagement.Checklist {
		items[i] = toStoredChecklistItem(item)
	}
	checklistJSON, err := json.Marshal(items)
	if err != nil {
		return "", "", sql.NullString{}, fmt.Errorf("marshalling checklist: %w", err)
	}

	var reconNS sql.NullString
	if engagement.Reconciliation != nil {
		reconJSON, err := json.Marshal(toStoredReconciliation(*engagement.Reconciliation))
		if err != nil {
			return "", "", sql.NullString{}, fmt.Errorf("marshalling reconciliation: %w", err)
		}
		reconNS = sql.NullString{String: string(reconJSON), Valid: true}
	}

	return string(documentsJSON), string(checklistJSON), reconNS, nil
}

// scanEngagement scans one engagement row via the given scan func.
func scanEngagement(scan func(dest ...any) error) (*domain.Engagement, error) {
	var engagement domain.Engagement
	var status string
	var documentsJSON, checklistJSON string
	var reconJSON, lastActivity sql.NullString
	var createdAt, updatedAt string

	err := scan(&engagement.ID, &engagement.ClientName, &status, &engagement.Provider,
		&engagement.FolderURL, &engagement.Folder.FolderID, &engagement.Folder.DriveID,
		&engagement.Folder.SharedLink, &engagement.SyncCheckpoint, &documentsJSON,
		&checklistJSON, &reconJSON, &engagement.RemindersSent, &lastActivity,
		&createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning engagement: %w", err)
	}

	engagement.Status = domain.EngagementStatus(status)
	engagement.LastActivityAt = parseNullableTime(lastActivity)
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		engagement.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		engagement.UpdatedAt = t
	}

	var stored []storedDocument
	if err := json.Unmarshal([]byte(documentsJSON), &stored); err != nil {
		return nil, fmt.Errorf("unmarshalling documents for %s: %w", engagement.ID, err)
	}
	engagement.Documents = make([]domain.Document, len(stored))
	for i, sd := range stored {
		engagement.Documents[i] = fromStoredDocument(sd)
	}

	var items []storedChecklistItem
	if err := json.Unmarshal([]byte(checklistJSON), &items); err != nil {
		return nil, fmt.Errorf("unmarshalling checklist for %s: %w", engagement.ID, err)
	}
	engagement.Checklist = make([]domain.ChecklistItem, len(items))
	for i, si := range items {
		engagement.Checklist[i] = fromStoredChecklistItem(si)
	}

	if reconJSON.Valid {
		var sr storedReconciliation
		if err := json.Unmarshal([]byte(reconJSON.String), &sr); err != nil {
			return nil, fmt.Errorf("unmarshalling reconciliation for %s: %w", engagement.ID, err)
		}
		recon := fromStoredReconciliation(sr)
		engagement.Reconciliation = &recon
	}

	return &engagement, nil
}

func toStoredDocument(doc domain.Document) storedDocument {
	return storedDocument{
		ID:                  doc.ID,
		FileName:            doc.FileName,
		StorageItemID:       doc.StorageItemID,
		Type:                string(doc.Type),
		Confidence:          doc.Confidence,
		TaxYear:             doc.TaxYear,
		Issues:              doc.Issues,
		FriendlyIssues:      doc.FriendlyIssues,
		ProcessingStatus:    string(doc.ProcessingStatus),
		ProcessingStartedAt: doc.ProcessingStartedAt,
		ClassifiedAt:        doc.ClassifiedAt,
		Approved:            doc.Approved,
		ApprovedAt:          doc.ApprovedAt,
		ApprovalOverride:    doc.ApprovalOverride,
		Archived:            doc.Archived,
		ArchivedAt:          doc.ArchivedAt,
		ArchiveReason:       doc.ArchiveReason,
		CreatedAt:           doc.CreatedAt,
	}
}

// fromStoredDocument decodes a persisted document. Legacy rows may
// predate some fields; missing values get explicit defaults.
func fromStoredDocument(sd storedDocument) domain.Document {
	doc := domain.Document{
		ID:                  sd.ID,
		FileName:            sd.FileName,
		StorageItemID:       sd.StorageItemID,
		Type:                domain.DocumentType(sd.Type),
		Confidence:          sd.Confidence,
		TaxYear:             sd.TaxYear,
		Issues:              sd.Issues,
		FriendlyIssues:      sd.FriendlyIssues,
		ProcessingStatus:    domain.ProcessingStatus(sd.ProcessingStatus),
		ProcessingStartedAt: sd.ProcessingStartedAt,
		ClassifiedAt:        sd.ClassifiedAt,
		Approved:            sd.Approved,
		ApprovedAt:          sd.ApprovedAt,
		ApprovalOverride:    sd.ApprovalOverride,
		Archived:            sd.Archived,
		ArchivedAt:          sd.ArchivedAt,
		ArchiveReason:       sd.ArchiveReason,
		CreatedAt:           sd.CreatedAt,
	}
	if doc.ProcessingStatus == "" {
		doc.ProcessingStatus = domain.ProcessingPending
	}
	if doc.Type == "" {
		doc.Type = domain.DocTypePending
	}
	return doc
}

func toStoredChecklistItem(item domain.ChecklistItem) storedChecklistItem {
	return storedChecklistItem{
		ID:           item.ID,
		Title:        item.Title,
		Rationale:    item.Rationale,
		Priority:     string(item.Priority),
		Status:       string(item.Status),
		DocumentIDs:  item.DocumentIDs,
		ExpectedType: string(item.ExpectedType),
	}
}

func fromStoredChecklistItem(si storedChecklistItem) domain.ChecklistItem {
	item := domain.ChecklistItem{
		ID:           si.ID,
		Title:        si.Title,
		Rationale:    si.Rationale,
		Priority:     domain.Priority(si.Priority),
		Status:       domain.ChecklistStatus(si.Status),
		DocumentIDs:  si.DocumentIDs,
		ExpectedType: domain.DocumentType(si.ExpectedType),
	}
	if item.Status == "" {
		item.Status = domain.ChecklistPending
	}
	if item.Priority == "" {
		item.Priority = domain.PriorityMedium
	}
	return item
}

func toStoredReconciliation(recon domain.Reconciliation) storedReconciliation {
	items := make([]storedItemStatus, len(recon.Items))
	for i, item := range recon.Items {
		items[i] = storedItemStatus{ItemID: item.ItemID, Title: item.Title, Status: string(item.Status)}
	}
	return storedReconciliation{
		CompletionPercent: recon.CompletionPercent,
		Items:             items,
		Issues:            recon.Issues,
		ComputedAt:        recon.ComputedAt,
	}
}

func fromStoredReconciliation(sr storedReconciliation) domain.Reconciliation {
	items := make([]domain.ItemStatus, len(sr.Items))
	for i, item := range sr.Items {
		items[i] = domain.ItemStatus{ItemID: item.ItemID, Title: item.Title, Status: domain.ChecklistStatus(item.Status)}
	}
	return domain.Reconciliation{
		CompletionPercent: sr.CompletionPercent,
		Items:             items,
		Issues:            sr.Issues,
		ComputedAt:        sr.ComputedAt,
	}
}
