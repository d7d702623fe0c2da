package services

import (
	"context"
	"fmt"
	"time"

	"github.com/arushs/Formly-sub001/internal/core/domain"
	"github.com/arushs/Formly-sub001/internal/core/ports/driven"
	"github.com/arushs/Formly-sub001/internal/logger"
)

// Ensure ReconciliationService implements the interface.
var _ driven.ReconciliationAgent = (*ReconciliationService)(nil)

// ReconciliationService recomputes the completion snapshot for an
// engagement. The arithmetic lives in domain.Reconcile; this agent owns
// fetching state, persisting the snapshot and flipping the engagement
// to READY when the checklist is satisfied.
type ReconciliationService struct {
	store driven.EngagementStore
}

// NewReconciliationService creates a reconciliation agent.
func NewReconciliationService(store driven.EngagementStore) *ReconciliationService {
	return &ReconciliationService{store: store}
}

// Run recomputes completion and reports readiness to the dispatcher.
func (s *ReconciliationService) Run(ctx context.Context, req driven.ReconciliationRequest) (*driven.ReconciliationResult, error) {
	engagement, err := s.store.Get(ctx, req.EngagementID)
	if err != nil {
		return nil, fmt.Errorf("get engagement: %w", err)
	}

	recon := domain.Reconcile(engagement.Checklist, engagement.Documents)

	now := time.Now()
	patch := domain.EngagementPatch{
		Checklist:      engagement.Checklist,
		Reconciliation: &recon,
		LastActivityAt: &now,
	}

	ready := recon.IsReady() && len(engagement.Checklist) > 0
	if ready && engagement.Status == domain.EngagementCollecting {
		status := domain.EngagementReady
		patch.Status = &status
	}

	if err := s.store.Update(ctx, req.EngagementID, patch); err != nil {
		return nil, fmt.Errorf("update engagement: %w", err)
	}

	logger.Info("reconciled engagement %s: %d%% complete, %d issues",
		req.EngagementID, recon.CompletionPercent, len(recon.Issues))
	return &driven.ReconciliationResult{IsReady: ready}, nil
}
