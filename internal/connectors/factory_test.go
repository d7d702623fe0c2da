package connectors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arushs/Formly-sub001/internal/connectors/filesystem"
	"github.com/arushs/Formly-sub001/internal/core/domain"
	"github.com/arushs/Formly-sub001/internal/core/ports/driven"
)

// mapConfig is a minimal config store for factory tests.
type mapConfig struct {
	values map[string]string
}

func (c *mapConfig) Get(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

func (c *mapConfig) GetString(key string) string { return c.values[key] }
func (c *mapConfig) GetInt(string) int           { return 0 }
func (c *mapConfig) GetBool(string) bool         { return false }
func (c *mapConfig) Set(key string, value any) error {
	if s, ok := value.(string); ok {
		c.values[key] = s
	}
	return nil
}
func (c *mapConfig) Save() error { return nil }
func (c *mapConfig) Load() error { return nil }
func (c *mapConfig) Path() string { return "" }

func TestDefaultFactory_SupportedTypes(t *testing.T) {
	factory := NewDefaultFactory(&mapConfig{values: map[string]string{}})

	assert.Equal(t, []string{"drive", "dropbox", "filesystem", "graph"}, factory.SupportedTypes())
}

func TestFactory_UnknownProvider(t *testing.T) {
	factory := NewDefaultFactory(&mapConfig{values: map[string]string{}})

	engagement := domain.NewEngagement("Acme LLC", "ftp")
	_, err := factory.Create(context.Background(), *engagement)
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestFactory_MissingCredentials(t *testing.T) {
	factory := NewDefaultFactory(&mapConfig{values: map[string]string{}})

	for _, provider := range []string{"dropbox", "drive", "graph"} {
		engagement := domain.NewEngagement("Acme LLC", provider)
		_, err := factory.Create(context.Background(), *engagement)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, provider)
	}
}

func TestFactory_FilesystemNeedsNoCredentials(t *testing.T) {
	factory := NewDefaultFactory(&mapConfig{values: map[string]string{}})

	engagement := domain.NewEngagement("Acme LLC", "filesystem")
	engagement.Folder = domain.FolderLocator{FolderID: t.TempDir()}

	provider, err := factory.Create(context.Background(), *engagement)
	require.NoError(t, err)
	defer provider.Close()

	assert.Equal(t, "filesystem", provider.Type())
	assert.False(t, provider.Capabilities().RequiresAuth)
	assert.IsType(t, &filesystem.Connector{}, provider)
}

func TestFactory_DropboxFromConfig(t *testing.T) {
	factory := NewDefaultFactory(&mapConfig{values: map[string]string{
		"providers.dropbox.token": "sl.test-token",
	}})

	engagement := domain.NewEngagement("Acme LLC", "dropbox")
	provider, err := factory.Create(context.Background(), *engagement)
	require.NoError(t, err)
	defer provider.Close()

	assert.Equal(t, "dropbox", provider.Type())
	assert.True(t, provider.Capabilities().SupportsSharedLink)
}

func TestFactory_RegisterOverrides(t *testing.T) {
	factory := NewFactory()
	assert.Empty(t, factory.SupportedTypes())

	factory.Register("custom", func(_ context.Context, _ domain.Engagement) (driven.StorageProvider, error) {
		return filesystem.New("/tmp"), nil
	})

	assert.Equal(t, []string{"custom"}, factory.SupportedTypes())

	provider, err := factory.Create(context.Background(), *domain.NewEngagement("X", "custom"))
	require.NoError(t, err)
	provider.Close()
}
