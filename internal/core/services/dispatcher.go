package services

import (
	"context"
	"fmt"

	"github.com/arushs/Formly-sub001/internal/core/domain"
	"github.com/arushs/Formly-sub001/internal/core/ports/driven"
	"github.com/arushs/Formly-sub001/internal/core/ports/driving"
	"github.com/arushs/Formly-sub001/internal/logger"
)

// Ensure Dispatcher implements the interface.
var _ driving.EventDispatcher = (*Dispatcher)(nil)

// Dispatcher is the in-process event router. It encodes the only valid
// transition graph between the three agents:
//
//	document_uploaded -> assessment -> document_assessed
//	document_assessed (clean) -> reconciliation -> engagement_complete
//	document_assessed (issues) -> outreach (document_issues)
//	check_completion -> reconciliation -> engagement_complete
//	engagement_created / intake_complete / stale_engagement -> outreach
//
// Delivery is at-most-once per call and not transactional with the
// store writes inside each agent: a crash between an agent's update
// and the chaining call is an accepted, logged gap. Recovery relies on
// the next poll or check_completion re-deriving state from the store.
type Dispatcher struct {
	outreach       driven.OutreachAgent
	assessment     driven.AssessmentAgent
	reconciliation driven.ReconciliationAgent
}

// NewDispatcher creates a dispatcher wired to the three agents.
func NewDispatcher(
	outreach driven.OutreachAgent,
	assessment driven.AssessmentAgent,
	reconciliation driven.ReconciliationAgent,
) *Dispatcher {
	return &Dispatcher{
		outreach:       outreach,
		assessment:     assessment,
		reconciliation: reconciliation,
	}
}

// Dispatch routes one event and runs its chain to completion.
func (d *Dispatcher) Dispatch(ctx context.Context, event domain.Event) error {
	logger.Debug("dispatch %s for engagement %s", event.Type, event.EngagementID)

	switch event.Type {
	case domain.EventEngagementCreated, domain.EventIntakeComplete, domain.EventStaleEngagement:
		return d.runOutreach(ctx, driven.OutreachRequest{
			Trigger:      event.Type,
			EngagementID: event.EngagementID,
		})

	case domain.EventDocumentUploaded:
		return d.handleDocumentUploaded(ctx, event)

	case domain.EventDocumentAssessed:
		return d.handleDocumentAssessed(ctx, event)

	case domain.EventCheckCompletion:
		return d.reconcileAndNotify(ctx, driven.ReconciliationRequest{
			Trigger:      event.Type,
			EngagementID: event.EngagementID,
		})

	default:
		logger.Warn("unrecognised event type %q dropped (engagement %s)", event.Type, event.EngagementID)
		return nil
	}
}

// DispatchDetached routes an event on a background goroutine.
// Failures are caught and logged here, never propagated.
func (d *Dispatcher) DispatchDetached(event domain.Event) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("detached chain panic for %s (engagement %s): %v", event.Type, event.EngagementID, r)
			}
		}()
		if err := d.Dispatch(context.Background(), event); err != nil {
			logger.Error("detached chain for %s failed (engagement %s): %v", event.Type, event.EngagementID, err)
		}
	}()
}

// handleDocumentUploaded runs assessment, then chains document_assessed
// using the assessment result.
func (d *Dispatcher) handleDocumentUploaded(ctx context.Context, event domain.Event) error {
	result, err := d.assessment.Run(ctx, driven.AssessmentRequest{
		Trigger:       event.Type,
		EngagementID:  event.EngagementID,
		DocumentID:    event.DocumentID,
		StorageItemID: event.StorageItemID,
		FileName:      event.FileName,
	})
	if err != nil {
		return fmt.Errorf("assessment: %w", err)
	}

	return d.Dispatch(ctx, domain.Event{
		Type:         domain.EventDocumentAssessed,
		EngagementID: event.EngagementID,
		DocumentID:   event.DocumentID,
		DocumentType: result.DocumentType,
		HasIssues:    result.HasIssues,
	})
}

// handleDocumentAssessed routes on the assessment outcome: issues go to
// outreach, clean assessments go to reconciliation.
func (d *Dispatcher) handleDocumentAssessed(ctx context.Context, event domain.Event) error {
	if event.HasIssues {
		return d.runOutreach(ctx, driven.OutreachRequest{
			Trigger:           domain.EventDocumentIssues,
			EngagementID:      event.EngagementID,
			AdditionalContext: fmt.Sprintf("document %s has issues", event.DocumentID),
		})
	}

	return d.reconcileAndNotify(ctx, driven.ReconciliationRequest{
		Trigger:      event.Type,
		EngagementID: event.EngagementID,
		DocumentID:   event.DocumentID,
		DocumentType: event.DocumentType,
	})
}

// reconcileAndNotify runs reconciliation and, when it reports ready,
// fires the completion notification. The notification fires at most
// once per reconciliation pass that reports readiness.
func (d *Dispatcher) reconcileAndNotify(ctx context.Context, req driven.ReconciliationRequest) error {
	result, err := d.reconciliation.Run(ctx, req)
	if err != nil {
		return fmt.Errorf("reconciliation: %w", err)
	}

	if !result.IsReady {
		return nil
	}

	return d.runOutreach(ctx, driven.OutreachRequest{
		Trigger:      domain.EventEngagementComplete,
		EngagementID: req.EngagementID,
	})
}

func (d *Dispatcher) runOutreach(ctx context.Context, req driven.OutreachRequest) error {
	if err := d.outreach.Run(ctx, req); err != nil {
		return fmt.Errorf("outreach %s: %w", req.Trigger, err)
	}
	return nil
}
