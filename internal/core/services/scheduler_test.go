package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arushs/Formly-sub001/internal/adapters/driven/storage/memory"
	"github.com/arushs/Formly-sub001/internal/core/domain"
	"github.com/arushs/Formly-sub001/internal/core/ports/driving"
)

type fakeIntake struct {
	summary  *driving.PollSummary
	err      error
	syncAlls int
}

func (f *fakeIntake) SyncEngagement(_ context.Context, engagementID string) (*driving.SyncReport, error) {
	return &driving.SyncReport{EngagementID: engagementID}, nil
}

func (f *fakeIntake) SyncAll(_ context.Context) (*driving.PollSummary, error) {
	f.syncAlls++
	if f.err != nil {
		return nil, f.err
	}
	if f.summary != nil {
		return f.summary, nil
	}
	return &driving.PollSummary{Failed: make(map[string]string)}, nil
}

func (f *fakeIntake) RetryDocument(_ context.Context, _, _ string) error { return nil }

func TestSchedulerRunOnce_SyncsAndReports(t *testing.T) {
	intake := &fakeIntake{summary: &driving.PollSummary{
		Synced: 2,
		Failed: map[string]string{"eng-3": "boom"},
	}}
	scheduler := NewScheduler(
		domain.DefaultSchedulerConfig(),
		memory.NewSchedulerStore(),
		memory.NewEngagementStore(),
		intake,
		&recordingDispatcher{},
	)

	summary, err := scheduler.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, intake.syncAlls)
	assert.Equal(t, 2, summary.Synced)
	assert.Len(t, summary.Failed, 1)
}

func TestSchedulerRunOnce_EmitsStaleEvents(t *testing.T) {
	ctx := context.Background()
	store := memory.NewEngagementStore()

	stale := domain.NewEngagement("Idle Co", "fake")
	stale.Status = domain.EngagementCollecting
	stale.LastActivityAt = time.Now().Add(-96 * time.Hour)
	require.NoError(t, store.Save(ctx, stale))

	active := domain.NewEngagement("Busy Co", "fake")
	active.Status = domain.EngagementCollecting
	require.NoError(t, store.Save(ctx, active))

	done := domain.NewEngagement("Done Co", "fake")
	done.Status = domain.EngagementReady
	done.LastActivityAt = time.Now().Add(-96 * time.Hour)
	require.NoError(t, store.Save(ctx, done))

	dispatcher := &recordingDispatcher{}
	scheduler := NewScheduler(
		domain.SchedulerConfig{Enabled: true, PollInterval: 15 * time.Minute, StaleAfter: 72 * time.Hour},
		memory.NewSchedulerStore(),
		store,
		&fakeIntake{},
		dispatcher,
	)

	_, err := scheduler.RunOnce(ctx)
	require.NoError(t, err)

	// Only the idle COLLECTING engagement goes stale.
	require.Len(t, dispatcher.events, 1)
	assert.Equal(t, domain.EventStaleEngagement, dispatcher.events[0].Type)
	assert.Equal(t, stale.ID, dispatcher.events[0].EngagementID)
}

func TestSchedulerRunOnce_StalenessDisabled(t *testing.T) {
	ctx := context.Background()
	store := memory.NewEngagementStore()

	stale := domain.NewEngagement("Idle Co", "fake")
	stale.Status = domain.EngagementCollecting
	stale.LastActivityAt = time.Now().Add(-96 * time.Hour)
	require.NoError(t, store.Save(ctx, stale))

	dispatcher := &recordingDispatcher{}
	scheduler := NewScheduler(
		domain.SchedulerConfig{Enabled: true, PollInterval: 15 * time.Minute},
		memory.NewSchedulerStore(),
		store,
		&fakeIntake{},
		dispatcher,
	)

	_, err := scheduler.RunOnce(ctx)
	require.NoError(t, err)
	assert.Empty(t, dispatcher.events)
}

func TestSchedulerStart_RegistersPollTask(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	taskStore := memory.NewSchedulerStore()

	scheduler := NewScheduler(
		domain.SchedulerConfig{Enabled: true, PollInterval: 30 * time.Minute},
		taskStore,
		memory.NewEngagementStore(),
		&fakeIntake{},
		&recordingDispatcher{},
	)

	done := make(chan error, 1)
	go func() { done <- scheduler.Start(ctx) }()

	require.Eventually(t, func() bool {
		task, err := taskStore.GetTask(ctx, domain.TaskIDEngagementPoll)
		return err == nil && task != nil
	}, 2*time.Second, 10*time.Millisecond)

	task, err := taskStore.GetTask(ctx, domain.TaskIDEngagementPoll)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, task.Interval)
	assert.True(t, task.Enabled)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestSchedulerStop_Idempotent(t *testing.T) {
	scheduler := NewScheduler(
		domain.DefaultSchedulerConfig(),
		memory.NewSchedulerStore(),
		memory.NewEngagementStore(),
		&fakeIntake{},
		&recordingDispatcher{},
	)

	require.NoError(t, scheduler.Stop())
	require.NoError(t, scheduler.Stop())
}
