package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/arushs/Formly-sub001/internal/core/domain"
	"github.com/arushs/Formly-sub001/internal/core/ports/driven"
	"github.com/arushs/Formly-sub001/internal/core/ports/driving"
	"github.com/arushs/Formly-sub001/internal/logger"
)

// historyRetention is how many task results are kept per task.
const historyRetention = 100

// Scheduler is the polling driver. On each poll it syncs every
// eligible engagement and emits stale_engagement for cases idle beyond
// the configured window. It does not wait for the dispatch chains a
// sync produces - those run detached.
type Scheduler struct {
	config     domain.SchedulerConfig
	store      driven.SchedulerStore
	engagement driven.EngagementStore
	intake     driving.IntakeOrchestrator
	dispatcher driving.EventDispatcher

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler with configuration.
func NewScheduler(
	config domain.SchedulerConfig,
	store driven.SchedulerStore,
	engagementStore driven.EngagementStore,
	intake driving.IntakeOrchestrator,
	dispatcher driving.EventDispatcher,
) *Scheduler {
	return &Scheduler{
		config:     config,
		store:      store,
		engagement: engagementStore,
		intake:     intake,
		dispatcher: dispatcher,
	}
}

// Start begins the scheduler loop. This method blocks until Stop is
// called or the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	if err := s.ensurePollTask(ctx); err != nil {
		logger.Warn("scheduler: failed to initialise poll task: %v", err)
	}

	return s.run(ctx)
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	// Wait for running polls to complete
	s.wg.Wait()

	return nil
}

// RunOnce executes a single poll pass synchronously. Used by the CLI's
// one-shot poll command and by tests.
func (s *Scheduler) RunOnce(ctx context.Context) (*driving.PollSummary, error) {
	return s.poll(ctx)
}

// ensurePollTask creates or updates the poll task in the store.
func (s *Scheduler) ensurePollTask(ctx context.Context) error {
	task, err := s.store.GetTask(ctx, domain.TaskIDEngagementPoll)
	if err != nil {
		return err
	}

	if task == nil {
		task = &domain.ScheduledTask{
			ID:       domain.TaskIDEngagementPoll,
			Name:     "Engagement Poll",
			Interval: s.config.PollInterval,
			Enabled:  s.config.Enabled,
			NextRun:  time.Now().Add(s.config.PollInterval),
		}
	} else {
		if task.Interval != s.config.PollInterval {
			task.Interval = s.config.PollInterval
			task.NextRun = time.Now().Add(s.config.PollInterval)
		}
		task.Enabled = s.config.Enabled
	}

	return s.store.SaveTask(ctx, task)
}

// run is the main scheduler loop.
func (s *Scheduler) run(ctx context.Context) error {
	// Check for due tasks immediately on startup
	s.checkAndRunDueTasks(ctx)

	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case <-ticker.C:
			s.checkAndRunDueTasks(ctx)
		}
	}
}

// checkAndRunDueTasks finds and executes tasks that are due.
func (s *Scheduler) checkAndRunDueTasks(ctx context.Context) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		logger.Warn("scheduler: failed to list tasks: %v", err)
		return
	}

	now := time.Now()
	for i := range tasks {
		task := &tasks[i]
		if !task.Enabled {
			continue
		}
		if task.NextRun.IsZero() || !task.NextRun.After(now) {
			s.runTask(ctx, task)
		}
	}
}

// runTask executes a single task on its own goroutine.
func (s *Scheduler) runTask(ctx context.Context, task *domain.ScheduledTask) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		result := &domain.TaskResult{
			TaskID:    task.ID,
			StartedAt: time.Now(),
		}

		var err error
		switch task.ID {
		case domain.TaskIDEngagementPoll:
			var summary *driving.PollSummary
			summary, err = s.poll(ctx)
			if summary != nil {
				result.ItemsProcessed = summary.Synced + len(summary.Failed)
				if err == nil && len(summary.Failed) > 0 {
					err = fmt.Errorf("%d engagement(s) failed to sync", len(summary.Failed))
				}
			}
		default:
			logger.Warn("scheduler: unknown task ID: %s", task.ID)
			return
		}

		result.EndedAt = time.Now()
		if err != nil {
			result.Success = false
			result.Error = err.Error()
			task.LastError = err.Error()
		} else {
			result.Success = true
			task.LastError = ""
			task.LastSuccess = result.EndedAt
		}

		task.LastRun = result.StartedAt
		task.NextRun = result.EndedAt.Add(task.Interval)

		if saveErr := s.store.SaveTask(ctx, task); saveErr != nil {
			logger.Warn("scheduler: failed to save task %s: %v", task.ID, saveErr)
		}

		if recordErr := s.store.RecordResult(ctx, result); recordErr != nil {
			logger.Warn("scheduler: failed to record result for %s: %v", task.ID, recordErr)
		}

		if pruneErr := s.store.PruneHistory(ctx, historyRetention); pruneErr != nil {
			logger.Warn("scheduler: failed to prune history: %v", pruneErr)
		}
	}()
}

// poll syncs all eligible engagements and emits stale_engagement for
// cases idle beyond the configured window.
func (s *Scheduler) poll(ctx context.Context) (*driving.PollSummary, error) {
	summary, err := s.intake.SyncAll(ctx)
	if err != nil {
		return summary, err
	}

	s.emitStaleEvents(ctx)
	return summary, nil
}

// emitStaleEvents dispatches stale_engagement for idle engagements.
// Dispatch is detached: a stuck outreach never blocks the poll.
func (s *Scheduler) emitStaleEvents(ctx context.Context) {
	if s.config.StaleAfter <= 0 {
		return
	}

	engagements, err := s.engagement.List(ctx)
	if err != nil {
		logger.Warn("scheduler: failed to list engagements for staleness: %v", err)
		return
	}

	cutoff := time.Now().Add(-s.config.StaleAfter)
	for _, engagement := range engagements {
		if engagement.Status != domain.EngagementCollecting {
			continue
		}
		if engagement.LastActivityAt.After(cutoff) {
			continue
		}
		logger.Info("engagement %s idle since %s, emitting stale_engagement",
			engagement.ID, engagement.LastActivityAt.Format(time.RFC3339))
		s.dispatcher.DispatchDetached(domain.Event{
			Type:         domain.EventStaleEngagement,
			EngagementID: engagement.ID,
		})
	}
}
