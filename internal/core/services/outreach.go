package services

import (
	"context"
	"fmt"
	"time"

	"github.com/arushs/Formly-sub001/internal/core/domain"
	"github.com/arushs/Formly-sub001/internal/core/ports/driven"
	"github.com/arushs/Formly-sub001/internal/logger"
)

// Ensure OutreachService implements the interface.
var _ driven.OutreachAgent = (*OutreachService)(nil)

// OutreachService sends client-facing communication through a Notifier.
// Message body composition is deliberately thin here - templating is
// out of scope - but the trigger bookkeeping (reminder counters,
// activity timestamps) belongs to this agent.
type OutreachService struct {
	store    driven.EngagementStore
	notifier driven.Notifier
}

// NewOutreachService creates an outreach agent.
// The notifier may be nil; outreach then only logs.
func NewOutreachService(store driven.EngagementStore, notifier driven.Notifier) *OutreachService {
	return &OutreachService{store: store, notifier: notifier}
}

// Run handles one outreach trigger.
func (s *OutreachService) Run(ctx context.Context, req driven.OutreachRequest) error {
	engagement, err := s.store.Get(ctx, req.EngagementID)
	if err != nil {
		return fmt.Errorf("get engagement: %w", err)
	}

	subject := subjectFor(req.Trigger, engagement)
	logger.Info("outreach %s for engagement %s: %s", req.Trigger, req.EngagementID, subject)

	if s.notifier != nil {
		body := subject
		if req.AdditionalContext != "" {
			body = fmt.Sprintf("%s (%s)", subject, req.AdditionalContext)
		}
		if err := s.notifier.Send(ctx, driven.Notification{
			EngagementID: req.EngagementID,
			Subject:      subject,
			Body:         body,
		}); err != nil {
			return fmt.Errorf("send notification: %w", err)
		}
	}

	if req.Trigger == domain.EventStaleEngagement {
		reminders := engagement.RemindersSent + 1
		now := time.Now()
		if err := s.store.Update(ctx, req.EngagementID, domain.EngagementPatch{
			RemindersSent:  &reminders,
			LastActivityAt: &now,
		}); err != nil {
			return fmt.Errorf("update reminder count: %w", err)
		}
	}
	return nil
}

func subjectFor(trigger domain.EventType, engagement *domain.Engagement) string {
	switch trigger {
	case domain.EventEngagementCreated:
		return fmt.Sprintf("Welcome %s - let's gather your tax documents", engagement.ClientName)
	case domain.EventIntakeComplete:
		return fmt.Sprintf("Your document checklist is ready, %s", engagement.ClientName)
	case domain.EventDocumentIssues:
		return "One of your documents needs attention"
	case domain.EventStaleEngagement:
		return "Reminder: we're still waiting on some documents"
	case domain.EventEngagementComplete:
		return "All documents received - you're all set"
	default:
		return fmt.Sprintf("Update on your engagement with %s", engagement.ClientName)
	}
}
