// Package memory provides in-memory store implementations used by
// tests and local development.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/arushs/Formly-sub001/internal/core/domain"
	"github.com/arushs/Formly-sub001/internal/core/ports/driven"
)

// Ensure EngagementStore implements the interface.
var _ driven.EngagementStore = (*EngagementStore)(nil)

// EngagementStore is an in-memory implementation of driven.EngagementStore.
type EngagementStore struct {
	mu          sync.RWMutex
	engagements map[string]domain.Engagement
}

// NewEngagementStore creates a new in-memory engagement store.
func NewEngagementStore() *EngagementStore {
	return &EngagementStore{
		engagements: make(map[string]domain.Engagement),
	}
}

// Get retrieves an engagement by ID.
func (s *EngagementStore) Get(_ context.Context, id string) (*domain.Engagement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	engagement, ok := s.engagements[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := cloneEngagement(engagement)
	return &copied, nil
}

// List returns all engagements.
func (s *EngagementStore) List(_ context.Context) ([]domain.Engagement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Engagement, 0, len(s.engagements))
	for _, engagement := range s.engagements {
		out = append(out, cloneEngagement(engagement))
	}
	return out, nil
}

// Save stores a new engagement or replaces an existing one.
func (s *EngagementStore) Save(_ context.Context, engagement *domain.Engagement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	engagement.UpdatedAt = time.Now()
	s.engagements[engagement.ID] = cloneEngagement(*engagement)
	return nil
}

// Update applies a field-level partial update. Nil patch fields are
// left untouched.
func (s *EngagementStore) Update(_ context.Context, id string, patch domain.EngagementPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	engagement, ok := s.engagements[id]
	if !ok {
		return domain.ErrNotFound
	}

	applyPatch(&engagement, patch)
	engagement.UpdatedAt = time.Now()
	s.engagements[id] = engagement
	return nil
}

// Delete removes an engagement.
func (s *EngagementStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.engagements[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.engagements, id)
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
		engagement.Documents = append([]domain.Document(nil), patch.Documents...)
	}
	if patch.Checklist != nil {
		engagement.Checklist = append([]domain.ChecklistItem(nil), patch.Checklist...)
	}
	if patch.Reconciliation != nil {
		recon := *patch.Reconciliation
		engagement.Reconciliation = &recon
	}
	if patch.RemindersSent != nil {
		engagement.RemindersSent = *patch.RemindersSent
	}
	if patch.LastActivityAt != nil {
		engagement.LastActivityAt = *patch.LastActivityAt
	}
}

// cloneEngagement copies the slices so callers cannot mutate stored
// state through a returned engagement.
func cloneEngagement(engagement domain.Engagement) domain.Engagement {
	engagement.Documents = append([]domain.Document(nil), engagement.Documents...)
	engagement.Checklist = append([]domain.ChecklistItem(nil), engagement.Checklist...)
	if engagement.Reconciliation != nil {
		recon := *engagement.Reconciliation
		engagement.Reconciliation = &recon
	}
	return engagement
}
