package connectors

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/oauth2"

	"github.com/arushs/Formly-sub001/internal/connectors/drive"
	"github.com/arushs/Formly-sub001/internal/connectors/dropbox"
	"github.com/arushs/Formly-sub001/internal/connectors/filesystem"
	"github.com/arushs/Formly-sub001/internal/connectors/graph"
	"github.com/arushs/Formly-sub001/internal/core/domain"
	"github.com/arushs/Formly-sub001/internal/core/ports/driven"
)

// Factory builds storage providers from engagement configuration.
// Implements driven.ProviderFactory.
type Factory struct {
	mu       sync.RWMutex
	builders map[string]driven.ProviderBuilder
}

var _ driven.ProviderFactory = (*Factory)(nil)

// NewFactory creates an empty provider factory.
func NewFactory() *Factory {
	return &Factory{builders: make(map[string]driven.ProviderBuilder)}
}

// NewDefaultFactory creates a factory with every built-in provider
// registered. Credentials come from the config store under the
// providers.* keys.
func NewDefaultFactory(cfg driven.ConfigStore) *Factory {
	f := NewFactory()

	f.Register("dropbox", func(_ context.Context, e domain.Engagement) (driven.StorageProvider, error) {
		token := cfg.GetString("providers.dropbox.token")
		if token == "" {
			return nil, fmt.Errorf("%w: providers.dropbox.token not configured", domain.ErrInvalidInput)
		}
		return dropbox.New(token, e.Folder.SharedLink), nil
	})

	f.Register("drive", func(ctx context.Context, _ domain.Engagement) (driven.StorageProvider, error) {
		token := cfg.GetString("providers.drive.token")
		if token == "" {
			return nil, fmt.Errorf("%w: providers.drive.token not configured", domain.ErrInvalidInput)
		}
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		return drive.New(ctx, ts)
	})

	f.Register("graph", func(_ context.Context, e domain.Engagement) (driven.StorageProvider, error) {
		token := cfg.GetString("providers.graph.token")
		if token == "" {
			return nil, fmt.Errorf("%w: providers.graph.token not configured", domain.ErrInvalidInput)
		}
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		return graph.New(ts, e.Folder.DriveID), nil
	})

	f.Register("filesystem", func(_ context.Context, e domain.Engagement) (driven.StorageProvider, error) {
		return filesystem.New(e.Folder.FolderID), nil
	})

	return f
}

// Create returns a StorageProvider for the engagement's provider tag.
func (f *Factory) Create(ctx context.Context, engagement domain.Engagement) (driven.StorageProvider, error) {
	f.mu.RLock()
	builder, ok := f.builders[engagement.Provider]
	f.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: provider %q", domain.ErrUnsupportedType, engagement.Provider)
	}
	return builder(ctx, engagement)
}

// Register adds a provider builder for the given type.
func (f *Factory) Register(providerType string, builder driven.ProviderBuilder) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.builders[providerType] = builder
}

// SupportedTypes returns all registered provider types, sorted.
func (f *Factory) SupportedTypes() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	types := make([]string, 0, len(f.builders))
	for t := range f.builders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
