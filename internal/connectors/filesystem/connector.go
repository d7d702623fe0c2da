package filesystem

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/arushs/Formly-sub001/internal/core/domain"
	"github.com/arushs/Formly-sub001/internal/core/ports/driven"
)

// DefaultMimeType is used when a file's type cannot be inferred.
const DefaultMimeType = "application/octet-stream"

// watchDebounce coalesces bursts of fsnotify events into one callback.
const watchDebounce = 500 * time.Millisecond

// Connector syncs a local directory. It exists for development and
// testing; file names double as item ids, so renames appear as a
// delete plus a create. Implements driven.StorageProvider.
type Connector struct {
	rootPath string
}

var _ driven.StorageProvider = (*Connector)(nil)

// New creates a filesystem connector rooted at rootPath.
func New(rootPath string) *Connector {
	return &Connector{rootPath: rootPath}
}

// Type returns the provider type identifier.
func (c *Connector) Type() string {
	return "filesystem"
}

// Capabilities returns what this provider supports.
func (c *Connector) Capabilities() driven.ProviderCapabilities {
	return driven.ProviderCapabilities{
		SupportsChangeFeed: true,
		SupportsSharedLink: false,
		SupportsDriveScope: false,
		RequiresAuth:       false,
		SupportsValidation: true,
	}
}

// Validate checks the root directory is readable.
func (c *Connector) Validate(_ context.Context) error {
	info, err := os.Stat(c.rootPath)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrProviderValidation, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", domain.ErrProviderValidation, c.rootPath)
	}
	return nil
}

// SyncFolder scans the directory. Every sync is a full scan; the
// checkpoint remembers the previous scan's entries so vanished files
// are reported with Deleted set. Sub-directories are skipped.
func (c *Connector) SyncFolder(_ context.Context, folder domain.FolderLocator, checkpoint string) (*domain.SyncResult, error) {
	root := c.rootPath
	if folder.FolderID != "" {
		root = folder.FolderID
	}

	cursor, err := DecodeCursor(checkpoint)
	if err != nil {
		cursor = NewCursor()
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", root, err)
	}

	next := NewCursor()
	next.ScannedAt = time.Now()

	var remotes []domain.RemoteFile
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue // removed between readdir and stat
		}
		name := entry.Name()
		next.Seen[name] = name
		remotes = append(remotes, domain.RemoteFile{
			ID:       name,
			Name:     name,
			Size:     info.Size(),
			MimeType: mimeFromName(name),
		})
	}

	for id, name := range cursor.Seen {
		if _, ok := next.Seen[id]; !ok {
			remotes = append(remotes, domain.RemoteFile{ID: id, Name: name, Deleted: true})
		}
	}

	return &domain.SyncResult{
		Files:      remotes,
		Checkpoint: next.Encode(),
	}, nil
}

// DownloadFile reads one file by its item id (its file name).
func (c *Connector) DownloadFile(_ context.Context, fileID string) (*domain.FileContent, error) {
	// Item ids are bare file names; reject anything that escapes the root.
	if fileID != filepath.Base(fileID) || fileID == ".." {
		return nil, fmt.Errorf("%w: invalid item id %q", domain.ErrInvalidInput, fileID)
	}

	path := filepath.Join(c.rootPath, fileID)
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() > domain.MaxDownloadSize {
		return nil, fmt.Errorf("%s (%d bytes) exceeds %d byte limit: %w",
			fileID, info.Size(), domain.MaxDownloadSize, domain.ErrFileTooLarge)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return &domain.FileContent{
		Name:     fileID,
		MimeType: mimeFromName(fileID),
		Size:     int64(len(data)),
		Data:     data,
	}, nil
}

// ResolveURL maps file:// URLs and bare absolute paths to locators.
// The path must exist and be a directory.
func (c *Connector) ResolveURL(_ context.Context, rawURL string) (*domain.FolderLocator, error) {
	path := rawURL
	if strings.HasPrefix(rawURL, "file://") {
		path = strings.TrimPrefix(rawURL, "file://")
	} else if !filepath.IsAbs(rawURL) {
		return nil, domain.ErrNoMatch
	}

	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return nil, nil //nolint:nilnil // recognised path, unverifiable access
	}
	return &domain.FolderLocator{FolderID: path}, nil
}

// Close releases resources.
func (c *Connector) Close() error {
	return nil
}

// Watch blocks until ctx is cancelled, invoking onChange whenever the
// directory's contents change. Bursts of events are debounced.
func (c *Connector) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(c.rootPath); err != nil {
		return fmt.Errorf("watching %s: %w", c.rootPath, err)
	}

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	pending := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(watchDebounce, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch error: %w", err)
		case <-pending:
			onChange()
		}
	}
}

// mimeFromName infers a content type from the file extension.
func mimeFromName(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return DefaultMimeType
	}
	if mt := mime.TypeByExtension(ext); mt != "" {
		return mt
	}
	return DefaultMimeType
}
