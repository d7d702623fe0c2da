package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arushs/Formly-sub001/internal/core/domain"
	"github.com/arushs/Formly-sub001/internal/core/ports/driven"
	"github.com/arushs/Formly-sub001/internal/core/ports/driving"
	"github.com/arushs/Formly-sub001/internal/logger"
)

// Ensure IntakeService implements the interface.
var _ driving.IntakeOrchestrator = (*IntakeService)(nil)

// maxConcurrentSyncs bounds the poll fan-out across engagements.
const maxConcurrentSyncs = 4

// IntakeService coordinates document discovery. Its job is
// bookkeeping: it never leaves two documents with the same remote item
// id in one engagement's list, and it preserves approval and archive
// history across reclassification. Extraction itself is performed by
// the assessment agent, reached through the dispatcher.
type IntakeService struct {
	store      driven.EngagementStore
	factory    driven.ProviderFactory
	dispatcher driving.EventDispatcher

	// running guards against overlapping syncs of one engagement from
	// this process. Syncs from other processes can still race; the
	// store offers no locking.
	mu      sync.Mutex
	running map[string]bool
}

// NewIntakeService creates an intake service.
func NewIntakeService(
	store driven.EngagementStore,
	factory driven.ProviderFactory,
	dispatcher driving.EventDispatcher,
) *IntakeService {
	return &IntakeService{
		store:      store,
		factory:    factory,
		dispatcher: dispatcher,
		running:    make(map[string]bool),
	}
}

// SyncEngagement discovers new remote files for one engagement.
func (s *IntakeService) SyncEngagement(ctx context.Context, engagementID string) (*driving.SyncReport, error) {
	if !s.acquire(engagementID) {
		return nil, domain.ErrSyncInProgress
	}
	defer s.release(engagementID)

	engagement, err := s.store.Get(ctx, engagementID)
	if err != nil {
		return nil, fmt.Errorf("get engagement: %w", err)
	}

	provider, err := s.factory.Create(ctx, *engagement)
	if err != nil {
		return nil, fmt.Errorf("create provider: %w", err)
	}
	defer provider.Close()

	if provider.Capabilities().SupportsValidation {
		if err := provider.Validate(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrProviderValidation, err)
		}
	}

	folder, err := s.resolveFolder(ctx, provider, engagement)
	if err != nil {
		return nil, err
	}

	logger.Info("syncing engagement %s via %s", engagementID, provider.Type())

	result, err := provider.SyncFolder(ctx, folder, engagement.SyncCheckpoint)
	if err != nil {
		return nil, fmt.Errorf("sync folder: %w", err)
	}

	report := &driving.SyncReport{
		EngagementID: engagementID,
		FilesSeen:    len(result.Files),
	}

	documents := engagement.Documents
	var uploaded []domain.Event

	for _, file := range result.Files {
		existing := findByStorageItemID(documents, file.ID)

		if file.Deleted {
			if existing != nil && !existing.Archived {
				existing.Archive("removed from client folder")
				report.ArchivedDocuments++
				logger.Debug("archived document %s (%s): remote file deleted", existing.ID, existing.FileName)
			}
			continue
		}

		// Dedup against both persisted documents and files repeated
		// within this listing: StorageItemID stays unique per
		// engagement across overlapping syncs.
		if existing != nil {
			continue
		}

		doc := domain.NewPlaceholderDocument(file.Name, file.ID)
		documents = append(documents, doc)
		report.NewDocuments++

		uploaded = append(uploaded, domain.Event{
			Type:          domain.EventDocumentUploaded,
			EngagementID:  engagementID,
			DocumentID:    doc.ID,
			StorageItemID: doc.StorageItemID,
			FileName:      doc.FileName,
		})
	}

	now := time.Now()
	patch := domain.EngagementPatch{
		Documents:      documents,
		SyncCheckpoint: &result.Checkpoint,
		Folder:         &folder,
	}
	if report.NewDocuments > 0 || report.ArchivedDocuments > 0 {
		patch.LastActivityAt = &now
	}
	if err := s.store.Update(ctx, engagementID, patch); err != nil {
		return nil, fmt.Errorf("update engagement: %w", err)
	}

	// Chains run detached: the poll driver does not wait for them and
	// their failures never reach its response.
	for _, event := range uploaded {
		s.dispatcher.DispatchDetached(event)
	}

	logger.Info("sync complete for %s: %d files, %d new, %d archived",
		engagementID, report.FilesSeen, report.NewDocuments, report.ArchivedDocuments)
	return report, nil
}

// SyncAll syncs every eligible engagement. One engagement's failure is
// captured per engagement and never aborts the rest of the poll cycle.
func (s *IntakeService) SyncAll(ctx context.Context) (*driving.PollSummary, error) {
	engagements, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list engagements: %w", err)
	}

	summary := &driving.PollSummary{Failed: make(map[string]string)}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentSyncs)

	for _, engagement := range engagements {
		if !engagement.Eligible() {
			continue
		}
		id := engagement.ID
		g.Go(func() error {
			_, syncErr := s.SyncEngagement(gctx, id)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case syncErr == nil:
				summary.Synced++
			case errors.Is(syncErr, domain.ErrSyncInProgress):
				logger.Debug("skipping engagement %s: sync already running", id)
			default:
				logger.Error("sync failed for engagement %s: %v", id, syncErr)
				summary.Failed[id] = syncErr.Error()
			}
			// Failures are recorded, not returned: returning would
			// cancel the remaining engagements in this cycle.
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return summary, err
	}
	return summary, nil
}

// RetryDocument resets a failed or stuck document to pending and
// re-dispatches processing. The reset clears confidence, issues and
// classification timestamps; approval and archive fields are untouched.
func (s *IntakeService) RetryDocument(ctx context.Context, engagementID, documentID string) error {
	engagement, err := s.store.Get(ctx, engagementID)
	if err != nil {
		return fmt.Errorf("get engagement: %w", err)
	}

	doc := engagement.DocumentByID(documentID)
	if doc == nil {
		return fmt.Errorf("document %s: %w", documentID, domain.ErrNotFound)
	}
	if !doc.Retryable(time.Now()) {
		return fmt.Errorf("document %s in state %s: %w", documentID, doc.ProcessingStatus, domain.ErrNotRetryable)
	}

	doc.ResetForRetry()

	now := time.Now()
	if err := s.store.Update(ctx, engagementID, domain.EngagementPatch{
		Documents:      engagement.Documents,
		LastActivityAt: &now,
	}); err != nil {
		return fmt.Errorf("update engagement: %w", err)
	}

	s.dispatcher.DispatchDetached(domain.Event{
		Type:          domain.EventDocumentUploaded,
		EngagementID:  engagementID,
		DocumentID:    doc.ID,
		StorageItemID: doc.StorageItemID,
		FileName:      doc.FileName,
	})
	return nil
}

// resolveFolder returns the engagement's folder locator, resolving the
// client-supplied URL on first contact when no locator is stored yet.
func (s *IntakeService) resolveFolder(
	ctx context.Context,
	provider driven.StorageProvider,
	engagement *domain.Engagement,
) (domain.FolderLocator, error) {
	if !engagement.Folder.IsZero() {
		return engagement.Folder, nil
	}
	if engagement.FolderURL == "" {
		return domain.FolderLocator{}, fmt.Errorf("engagement %s has no folder: %w", engagement.ID, domain.ErrInvalidInput)
	}

	locator, err := provider.ResolveURL(ctx, engagement.FolderURL)
	if err != nil {
		return domain.FolderLocator{}, fmt.Errorf("resolve folder url: %w", err)
	}
	if locator != nil {
		return *locator, nil
	}

	// Recognised but unverifiable: shared-link providers can still
	// establish a cursor from the URL alone on first sync.
	if provider.Capabilities().SupportsSharedLink {
		return domain.FolderLocator{SharedLink: engagement.FolderURL}, nil
	}
	return domain.FolderLocator{}, fmt.Errorf("folder url not accessible: %w", domain.ErrProviderValidation)
}

func (s *IntakeService) acquire(engagementID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running[engagementID] {
		return false
	}
	s.running[engagementID] = true
	return true
}

func (s *IntakeService) release(engagementID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.running, engagementID)
}

func findByStorageItemID(documents []domain.Document, storageItemID string) *domain.Document {
	for i := range documents {
		if documents[i].StorageItemID == storageItemID {
			return &documents[i]
		}
	}
	return nil
}
