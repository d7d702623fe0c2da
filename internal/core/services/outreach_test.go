package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arushs/Formly-sub001/internal/adapters/driven/storage/memory"
	"github.com/arushs/Formly-sub001/internal/core/domain"
	"github.com/arushs/Formly-sub001/internal/core/ports/driven"
)

type recordingNotifier struct {
	sent []driven.Notification
	err  error
}

func (n *recordingNotifier) Send(_ context.Context, notification driven.Notification) error {
	n.sent = append(n.sent, notification)
	return n.err
}

func TestOutreachRun_SendsNotification(t *testing.T) {
	ctx := context.Background()
	store := memory.NewEngagementStore()
	engagement := domain.NewEngagement("Acme LLC", "fake")
	require.NoError(t, store.Save(ctx, engagement))

	notifier := &recordingNotifier{}
	svc := NewOutreachService(store, notifier)

	err := svc.Run(ctx, driven.OutreachRequest{
		Trigger:      domain.EventEngagementCreated,
		EngagementID: engagement.ID,
	})
	require.NoError(t, err)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, engagement.ID, notifier.sent[0].EngagementID)
	assert.Contains(t, notifier.sent[0].Subject, "Acme LLC")
}

func TestOutreachRun_AdditionalContextInBody(t *testing.T) {
	ctx := context.Background()
	store := memory.NewEngagementStore()
	engagement := domain.NewEngagement("Acme LLC", "fake")
	require.NoError(t, store.Save(ctx, engagement))

	notifier := &recordingNotifier{}
	svc := NewOutreachService(store, notifier)

	err := svc.Run(ctx, driven.OutreachRequest{
		Trigger:           domain.EventDocumentIssues,
		EngagementID:      engagement.ID,
		AdditionalContext: "document doc-1 has issues",
	})
	require.NoError(t, err)

	require.Len(t, notifier.sent, 1)
	assert.Contains(t, notifier.sent[0].Body, "doc-1")
}

func TestOutreachRun_NilNotifierOnlyLogs(t *testing.T) {
	ctx := context.Background()
	store := memory.NewEngagementStore()
	engagement := domain.NewEngagement("Acme LLC", "fake")
	require.NoError(t, store.Save(ctx, engagement))

	svc := NewOutreachService(store, nil)

	err := svc.Run(ctx, driven.OutreachRequest{
		Trigger:      domain.EventEngagementComplete,
		EngagementID: engagement.ID,
	})
	assert.NoError(t, err)
}

func TestOutreachRun_StaleTriggerCountsReminder(t *testing.T) {
	ctx := context.Background()
	store := memory.NewEngagementStore()
	engagement := domain.NewEngagement("Acme LLC", "fake")
	engagement.RemindersSent = 2
	require.NoError(t, store.Save(ctx, engagement))

	svc := NewOutreachService(store, &recordingNotifier{})

	err := svc.Run(ctx, driven.OutreachRequest{
		Trigger:      domain.EventStaleEngagement,
		EngagementID: engagement.ID,
	})
	require.NoError(t, err)

	stored, err := store.Get(ctx, engagement.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.RemindersSent)
}

func TestOutreachRun_SendFailurePropagates(t *testing.T) {
	ctx := context.Background()
	store := memory.NewEngagementStore()
	engagement := domain.NewEngagement("Acme LLC", "fake")
	require.NoError(t, store.Save(ctx, engagement))

	svc := NewOutreachService(store, &recordingNotifier{err: errors.New("smtp down")})

	err := svc.Run(ctx, driven.OutreachRequest{
		Trigger:      domain.EventStaleEngagement,
		EngagementID: engagement.ID,
	})
	require.Error(t, err)

	// Failed sends never count as reminders.
	stored, err := store.Get(ctx, engagement.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.RemindersSent)
}
