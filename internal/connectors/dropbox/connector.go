package dropbox

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox"
	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox/files"
	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox/sharing"
	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox/users"

	"github.com/arushs/Formly-sub001/internal/connectors/ratelimit"
	"github.com/arushs/Formly-sub001/internal/core/domain"
	"github.com/arushs/Formly-sub001/internal/core/ports/driven"
)

// DefaultMimeType is used when a file's type cannot be inferred.
const DefaultMimeType = "application/octet-stream"

// Connector syncs a Dropbox folder, addressed either by path/id or by
// a shared link. Implements driven.StorageProvider.
type Connector struct {
	filesClient   files.Client
	sharingClient sharing.Client
	usersClient   users.Client
	limiter       *ratelimit.RateLimiter
	sharedLink    string
}

var _ driven.StorageProvider = (*Connector)(nil)

// New creates a Dropbox connector for the given access token.
// sharedLink may be empty when the folder is addressed by id.
func New(token, sharedLink string) *Connector {
	cfg := dropbox.Config{Token: token}
	return &Connector{
		filesClient:   files.New(cfg),
		sharingClient: sharing.New(cfg),
		usersClient:   users.New(cfg),
		limiter:       ratelimit.NewRateLimiter("dropbox"),
		sharedLink:    sharedLink,
	}
}

// Type returns the provider type identifier.
func (c *Connector) Type() string {
	return "dropbox"
}

// Capabilities returns what this provider supports.
func (c *Connector) Capabilities() driven.ProviderCapabilities {
	return driven.ProviderCapabilities{
		SupportsChangeFeed: true,
		SupportsSharedLink: true,
		SupportsDriveScope: false,
		RequiresAuth:       true,
		SupportsValidation: true,
	}
}

// Validate checks the token by fetching the current account. When a
// shared link is configured it also checks the link is live.
func (c *Connector) Validate(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	if _, err := c.usersClient.GetCurrentAccount(); err != nil {
		return fmt.Errorf("%w: dropbox account check: %v", domain.ErrProviderValidation, err)
	}

	if c.sharedLink != "" {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		arg := sharing.NewGetSharedLinkMetadataArg(c.sharedLink)
		if _, err := c.sharingClient.GetSharedLinkMetadata(arg); err != nil {
			return fmt.Errorf("%w: dropbox shared link check: %v", domain.ErrProviderValidation, err)
		}
	}
	return nil
}

// SyncFolder lists files under the folder, continuing from checkpoint.
// An undecodable or rejected checkpoint restarts from a full listing;
// consumers dedup by item id, so re-delivery is safe.
func (c *Connector) SyncFolder(ctx context.Context, folder domain.FolderLocator, checkpoint string) (*domain.SyncResult, error) {
	cursor, err := DecodeCursor(checkpoint)
	if err != nil {
		cursor = NewCursor()
	}

	var (
		result  *files.ListFolderResult
		remotes []domain.RemoteFile
	)

	if cursor.IsEmpty() {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		result, err = c.filesClient.ListFolder(c.listFolderArg(folder))
		if err != nil {
			return nil, fmt.Errorf("dropbox list folder: %w", err)
		}
	} else {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		result, err = c.filesClient.ListFolderContinue(files.NewListFolderContinueArg(cursor.ListCursor))
		if err != nil {
			// Expired or reset cursors restart from a full listing.
			cursor = NewCursor()
			if werr := c.limiter.Wait(ctx); werr != nil {
				return nil, werr
			}
			result, err = c.filesClient.ListFolder(c.listFolderArg(folder))
			if err != nil {
				return nil, fmt.Errorf("dropbox list folder: %w", err)
			}
		}
	}

	for {
		remotes = append(remotes, c.collectEntries(cursor, result.Entries)...)
		if !result.HasMore {
			break
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		result, err = c.filesClient.ListFolderContinue(files.NewListFolderContinueArg(result.Cursor))
		if err != nil {
			return nil, fmt.Errorf("dropbox list folder continue: %w", err)
		}
	}

	cursor.ListCursor = result.Cursor
	return &domain.SyncResult{
		Files:      remotes,
		Checkpoint: cursor.Encode(),
	}, nil
}

// listFolderArg builds the initial listing argument for the folder.
func (c *Connector) listFolderArg(folder domain.FolderLocator) *files.ListFolderArg {
	switch {
	case folder.SharedLink != "":
		arg := files.NewListFolderArg("")
		arg.SharedLink = files.NewSharedLink(folder.SharedLink)
		return arg
	case c.sharedLink != "":
		arg := files.NewListFolderArg("")
		arg.SharedLink = files.NewSharedLink(c.sharedLink)
		return arg
	default:
		return files.NewListFolderArg(folder.FolderID)
	}
}

// collectEntries converts listing entries to remote files, skipping
// sub-folders. Deletion entries carry only a path; the cursor's
// path-to-id map resolves them back to the item id.
func (c *Connector) collectEntries(cursor *Cursor, entries []files.IsMetadata) []domain.RemoteFile {
	var remotes []domain.RemoteFile
	for _, entry := range entries {
		switch meta := entry.(type) {
		case *files.FileMetadata:
			cursor.PathIDs[meta.PathLower] = meta.Id
			remotes = append(remotes, domain.RemoteFile{
				ID:       meta.Id,
				Name:     meta.Name,
				Size:     int64(meta.Size),
				MimeType: mimeFromName(meta.Name),
			})
		case *files.DeletedMetadata:
			id, ok := cursor.PathIDs[meta.PathLower]
			if !ok {
				continue // never saw this path as a file
			}
			delete(cursor.PathIDs, meta.PathLower)
			remotes = append(remotes, domain.RemoteFile{
				ID:      id,
				Name:    meta.Name,
				Deleted: true,
			})
		}
		// *files.FolderMetadata entries are filtered out
	}
	return remotes
}

// DownloadFile fetches one file's content by its Dropbox item id.
func (c *Connector) DownloadFile(ctx context.Context, fileID string) (*domain.FileContent, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	meta, err := c.filesClient.GetMetadata(files.NewGetMetadataArg(fileID))
	if err != nil {
		return nil, fmt.Errorf("dropbox metadata for %s: %w", fileID, err)
	}
	fileMeta, ok := meta.(*files.FileMetadata)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a file", domain.ErrInvalidInput, fileID)
	}
	if int64(fileMeta.Size) > domain.MaxDownloadSize {
		return nil, fmt.Errorf("%s (%d bytes) exceeds %d byte limit: %w",
			fileMeta.Name, fileMeta.Size, domain.MaxDownloadSize, domain.ErrFileTooLarge)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	_, body, err := c.filesClient.Download(files.NewDownloadArg(fileID))
	if err != nil {
		return nil, fmt.Errorf("dropbox download %s: %w", fileID, err)
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, domain.MaxDownloadSize))
	if err != nil {
		return nil, fmt.Errorf("dropbox read %s: %w", fileID, err)
	}

	return &domain.FileContent{
		Name:     fileMeta.Name,
		MimeType: mimeFromName(fileMeta.Name),
		Size:     int64(len(data)),
		Data:     data,
	}, nil
}

// ResolveURL maps a Dropbox shared-link URL to a folder locator.
// The link is verified against the sharing API; a recognised link
// whose access cannot be verified resolves to (nil, nil).
func (c *Connector) ResolveURL(ctx context.Context, rawURL string) (*domain.FolderLocator, error) {
	if !IsShareURL(rawURL) {
		return nil, domain.ErrNoMatch
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	meta, err := c.sharingClient.GetSharedLinkMetadata(sharing.NewGetSharedLinkMetadataArg(rawURL))
	if err != nil {
		return nil, nil //nolint:nilnil // recognised link, unverifiable access
	}

	locator := &domain.FolderLocator{SharedLink: rawURL}
	if folderMeta, ok := meta.(*sharing.FolderLinkMetadata); ok {
		locator.FolderID = folderMeta.Id
	}
	return locator, nil
}

// Close releases resources. The Dropbox SDK holds no connections.
func (c *Connector) Close() error {
	return nil
}

// mimeFromName infers a content type from the file extension.
// Dropbox listings do not report MIME types.
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
