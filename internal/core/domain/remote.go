package domain

// MaxDownloadSize is the largest remote file any provider will transfer,
// shared by all providers. Larger files are refused before download.
const MaxDownloadSize = 50 * 1024 * 1024

// FolderLocator identifies a remote folder at a storage provider.
// Which fields are populated depends on the provider.
type FolderLocator struct {
	// FolderID is the provider-specific folder identifier.
	FolderID string

	// DriveID scopes the folder for providers that address content by
	// drive (e.g. Microsoft Graph). Empty elsewhere.
	DriveID string

	// SharedLink is a shared-link URL for providers that can sync from
	// a link alone before a folder id is known.
	SharedLink string
}

// IsZero reports whether the locator carries no addressing information.
func (l FolderLocator) IsZero() bool {
	return l.FolderID == "" && l.DriveID == "" && l.SharedLink == ""
}

// RemoteFile is one entry from a provider folder listing.
type RemoteFile struct {
	// ID is the provider-specific item id. Stable across listings;
	// consumers dedup on it, never on checkpoints.
	ID string

	// Name is the file name.
	Name string

	// Size is the reported size in bytes.
	Size int64

	// MimeType is the reported content type, when the provider knows it.
	MimeType string

	// Deleted marks a change-feed deletion entry.
	Deleted bool
}

// SyncResult is the outcome of one provider sync call.
//
// Sync must be idempotent under a stale checkpoint: re-applying the same
// checkpoint returns the same or a superset of previously seen files.
type SyncResult struct {
	// Files are the listed or changed files. Sub-folders are filtered
	// out by the provider.
	Files []RemoteFile

	// Checkpoint is the opaque continuation token to persist and pass
	// back on the next sync.
	Checkpoint string
}

// FileContent is a downloaded file.
type FileContent struct {
	// Name is the file name.
	Name string

	// MimeType is the content type.
	MimeType string

	// Size is the byte length of Data.
	Size int64

	// Data is the file body.
	Data []byte
}
