package driven

import (
	"context"

	"github.com/arushs/Formly-sub001/internal/core/domain"
)

// EngagementStore persists engagements.
//
// Update applies field-level partial writes: nil patch fields are left
// untouched. There are no transactions spanning multiple engagements.
// The document list and checkpoint are overwritten wholesale on each
// update, so two concurrent syncs of the same engagement can race and
// lose a write; callers serialise per engagement where they can.
type EngagementStore interface {
	// Get retrieves an engagement by ID.
	// Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, id string) (*domain.Engagement, error)

	// List returns all engagements.
	List(ctx context.Context) ([]domain.Engagement, error)

	// Save stores a new engagement or replaces an existing one.
	Save(ctx context.Context, engagement *domain.Engagement) error

	// Update applies a partial update to an engagement.
	// Returns domain.ErrNotFound if it does not exist.
	Update(ctx context.Context, id string, patch domain.EngagementPatch) error

	// Delete removes an engagement.
	Delete(ctx context.Context, id string) error
}
