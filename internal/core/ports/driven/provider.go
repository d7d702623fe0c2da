package driven

import (
	"context"

	"github.com/arushs/Formly-sub001/internal/core/domain"
)

// StorageProvider syncs files from a remote folder.
// Each provider family (dropbox, drive, graph, filesystem) implements
// this interface.
type StorageProvider interface {
	// Type returns the provider type identifier.
	Type() string

	// Capabilities returns what this provider supports.
	Capabilities() ProviderCapabilities

	// Validate checks the provider is properly configured and
	// authenticated. For API providers this typically makes a test
	// call; for filesystem it checks the path is readable.
	Validate(ctx context.Context) error

	// SyncFolder lists files under the folder, continuing from the
	// opaque checkpoint. An empty checkpoint means a first sync and
	// returns a full listing plus an initial checkpoint. Providers
	// must treat an undecodable or expired checkpoint as a restart
	// from a full listing - consumers dedup by remote item id, so
	// re-delivery is safe.
	//
	// Sub-folder entries are filtered out. Deleted entries (where the
	// provider exposes deltas) are returned with Deleted set.
	SyncFolder(ctx context.Context, folder domain.FolderLocator, checkpoint string) (*domain.SyncResult, error)

	// DownloadFile fetches one file's content by its remote item id.
	// Files whose reported size exceeds domain.MaxDownloadSize are
	// refused with domain.ErrFileTooLarge before any transfer.
	DownloadFile(ctx context.Context, fileID string) (*domain.FileContent, error)

	// ResolveURL maps a client-supplied folder URL to a locator.
	// Returns domain.ErrNoMatch when the URL syntax is unrecognised,
	// and (nil, nil) when the URL is recognised but access cannot be
	// verified.
	ResolveURL(ctx context.Context, url string) (*domain.FolderLocator, error)

	// Close releases resources.
	Close() error
}

// ProviderCapabilities describes what a storage provider supports.
type ProviderCapabilities struct {
	// SupportsChangeFeed indicates SyncFolder returns deltas
	// (including deletions) after the first full listing.
	SupportsChangeFeed bool

	// SupportsSharedLink indicates the provider can sync from a
	// shared-link URL alone, before a folder id is known.
	SupportsSharedLink bool

	// SupportsDriveScope indicates folder addressing requires a drive
	// identifier in addition to the folder identifier.
	SupportsDriveScope bool

	// RequiresAuth indicates the provider needs credentials.
	// False for the local filesystem provider.
	RequiresAuth bool

	// SupportsValidation indicates Validate() performs a real check.
	SupportsValidation bool
}

// ProviderBuilder creates a StorageProvider for an engagement.
type ProviderBuilder func(ctx context.Context, engagement domain.Engagement) (StorageProvider, error)

// ProviderFactory creates storage providers from engagement
// configuration. It maintains a registry of provider types and their
// builders.
type ProviderFactory interface {
	// Create returns a StorageProvider for the engagement's provider
	// tag. Returns domain.ErrUnsupportedType for unknown tags.
	Create(ctx context.Context, engagement domain.Engagement) (StorageProvider, error)

	// Register adds a provider builder for the given type.
	Register(providerType string, builder ProviderBuilder)

	// SupportedTypes returns all registered provider types.
	SupportedTypes() []string
}
