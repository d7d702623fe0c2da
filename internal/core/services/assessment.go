package services

import (
	"context"
	"fmt"
	"time"

	"github.com/arushs/Formly-sub001/internal/core/domain"
	"github.com/arushs/Formly-sub001/internal/core/ports/driven"
	"github.com/arushs/Formly-sub001/internal/logger"
)

// Ensure AssessmentService implements the interface.
var _ driven.AssessmentAgent = (*AssessmentService)(nil)

// AssessmentService drives one document through download, extraction
// and classification. Each state transition is persisted before the
// next network call so a crash leaves an honest processing status
// behind, and the engagement is re-fetched around every suspension
// point rather than held across it.
type AssessmentService struct {
	store      driven.EngagementStore
	factory    driven.ProviderFactory
	extractor  driven.Extractor
	classifier driven.Classifier
}

// NewAssessmentService creates an assessment agent.
// The classifier may be nil; documents then land as UNCLASSIFIED.
func NewAssessmentService(
	store driven.EngagementStore,
	factory driven.ProviderFactory,
	extractor driven.Extractor,
	classifier driven.Classifier,
) *AssessmentService {
	return &AssessmentService{
		store:      store,
		factory:    factory,
		extractor:  extractor,
		classifier: classifier,
	}
}

// Run processes one uploaded document and returns the assessment the
// dispatcher chains on.
func (s *AssessmentService) Run(ctx context.Context, req driven.AssessmentRequest) (*driven.AssessmentResult, error) {
	if s.extractor == nil {
		return nil, domain.ErrExtractionUnavailable
	}

	content, err := s.download(ctx, req)
	if err != nil {
		s.markError(ctx, req.EngagementID, req.DocumentID)
		return nil, err
	}

	extraction, err := s.extract(ctx, req, content)
	if err != nil {
		s.markError(ctx, req.EngagementID, req.DocumentID)
		return nil, err
	}

	classification, err := s.classify(ctx, req, extraction)
	if err != nil {
		s.markError(ctx, req.EngagementID, req.DocumentID)
		return nil, err
	}

	if err := s.recordClassified(ctx, req, extraction, classification); err != nil {
		return nil, err
	}

	logger.Info("assessed document %s as %s (%d issues)", req.DocumentID, classification.Type, len(classification.Issues))
	return &driven.AssessmentResult{
		HasIssues:    len(classification.Issues) > 0,
		DocumentType: classification.Type,
	}, nil
}

func (s *AssessmentService) download(ctx context.Context, req driven.AssessmentRequest) (*domain.FileContent, error) {
	if err := s.transition(ctx, req.EngagementID, req.DocumentID, domain.ProcessingDownloading); err != nil {
		return nil, err
	}

	engagement, err := s.store.Get(ctx, req.EngagementID)
	if err != nil {
		return nil, fmt.Errorf("get engagement: %w", err)
	}
	provider, err := s.factory.Create(ctx, *engagement)
	if err != nil {
		return nil, fmt.Errorf("create provider: %w", err)
	}
	defer provider.Close()

	content, err := provider.DownloadFile(ctx, req.StorageItemID)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", req.FileName, err)
	}
	return content, nil
}

func (s *AssessmentService) extract(
	ctx context.Context,
	req driven.AssessmentRequest,
	content *domain.FileContent,
) (*domain.ExtractionResult, error) {
	if err := s.transition(ctx, req.EngagementID, req.DocumentID, domain.ProcessingExtracting); err != nil {
		return nil, err
	}

	result, err := s.extractor.Extract(ctx, driven.ExtractionInput{
		Data:      content.Data,
		MediaType: content.MimeType,
		FileName:  content.Name,
	})
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", req.FileName, err)
	}
	return result, nil
}

func (s *AssessmentService) classify(
	ctx context.Context,
	req driven.AssessmentRequest,
	extraction *domain.ExtractionResult,
) (*driven.Classification, error) {
	if err := s.transition(ctx, req.EngagementID, req.DocumentID, domain.ProcessingClassifying); err != nil {
		return nil, err
	}

	if s.classifier == nil {
		return &driven.Classification{Type: domain.DocTypeUnclassified}, nil
	}

	classification, err := s.classifier.Classify(ctx, req.FileName, extraction)
	if err != nil {
		return nil, fmt.Errorf("classify %s: %w", req.FileName, err)
	}
	return classification, nil
}

// recordClassified persists the final document state and records the
// document against checklist items expecting its type.
func (s *AssessmentService) recordClassified(
	ctx context.Context,
	req driven.AssessmentRequest,
	extraction *domain.ExtractionResult,
	classification *driven.Classification,
) error {
	engagement, err := s.store.Get(ctx, req.EngagementID)
	if err != nil {
		return fmt.Errorf("get engagement: %w", err)
	}
	doc := engagement.DocumentByID(req.DocumentID)
	if doc == nil {
		return fmt.Errorf("document %s: %w", req.DocumentID, domain.ErrNotFound)
	}

	now := time.Now()
	doc.Type = classification.Type
	doc.Confidence = extraction.Confidence
	doc.TaxYear = classification.TaxYear
	doc.Issues = classification.Issues
	doc.FriendlyIssues = friendlyIssues(classification.Issues)
	doc.ProcessingStatus = domain.ProcessingClassified
	doc.ProcessingStartedAt = nil
	doc.ClassifiedAt = &now

	checklist := matchDocument(engagement.Checklist, doc)

	if err := s.store.Update(ctx, req.EngagementID, domain.EngagementPatch{
		Documents:      engagement.Documents,
		Checklist:      checklist,
		LastActivityAt: &now,
	}); err != nil {
		return fmt.Errorf("update engagement: %w", err)
	}
	return nil
}

// transition moves the document into a processing state, stamping the
// processing start on the first transition of a run.
func (s *AssessmentService) transition(
	ctx context.Context,
	engagementID, documentID string,
	status domain.ProcessingStatus,
) error {
	engagement, err := s.store.Get(ctx, engagementID)
	if err != nil {
		return fmt.Errorf("get engagement: %w", err)
	}
	doc := engagement.DocumentByID(documentID)
	if doc == nil {
		return fmt.Errorf("document %s: %w", documentID, domain.ErrNotFound)
	}

	doc.ProcessingStatus = status
	if doc.ProcessingStartedAt == nil {
		now := time.Now()
		doc.ProcessingStartedAt = &now
	}

	if err := s.store.Update(ctx, engagementID, domain.EngagementPatch{
		Documents: engagement.Documents,
	}); err != nil {
		return fmt.Errorf("update engagement: %w", err)
	}
	return nil
}

// markError is best-effort: an unrecoverable step failure already has
// an error travelling up the chain.
func (s *AssessmentService) markError(ctx context.Context, engagementID, documentID string) {
	engagement, err := s.store.Get(ctx, engagementID)
	if err != nil {
		logger.Warn("could not mark document %s errored: %v", documentID, err)
		return
	}
	doc := engagement.DocumentByID(documentID)
	if doc == nil {
		return
	}
	doc.ProcessingStatus = domain.ProcessingError
	if err := s.store.Update(ctx, engagementID, domain.EngagementPatch{Documents: engagement.Documents}); err != nil {
		logger.Warn("could not mark document %s errored: %v", documentID, err)
	}
}

// matchDocument records the document id on checklist items expecting
// its classified type. The richer matching service sits outside this
// engine; type equality is the recorded association it feeds on.
func matchDocument(checklist []domain.ChecklistItem, doc *domain.Document) []domain.ChecklistItem {
	if doc.Type == domain.DocTypePending || doc.Type == domain.DocTypeUnclassified {
		return checklist
	}
	for i := range checklist {
		item := &checklist[i]
		if item.ExpectedType != doc.Type {
			continue
		}
		if !containsString(item.DocumentIDs, doc.ID) {
			item.DocumentIDs = append(item.DocumentIDs, doc.ID)
		}
	}
	return checklist
}

func friendlyIssues(issues []string) []string {
	if len(issues) == 0 {
		return nil
	}
	out := make([]string, len(issues))
	for i, raw := range issues {
		out[i] = domain.FriendlyIssue(raw)
	}
	return out
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
