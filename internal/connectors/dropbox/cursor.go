package dropbox

import (
	"errors"

	"github.com/arushs/Formly-sub001/internal/connectors/cursors"
)

// CursorVersion is the current cursor format version.
const CursorVersion = 1

// ErrInvalidCursor indicates the cursor could not be decoded.
var ErrInvalidCursor = errors.New("dropbox: invalid cursor format")

// Cursor tracks Dropbox sync state.
//
// Dropbox delta entries for deletions carry only a path, not an item
// id, so the cursor also records the path-to-id mapping seen so far.
// That lets an incremental sync report deletions by the same item id
// the consumer dedups on.
type Cursor struct {
	// Version is the cursor format version for future compatibility.
	Version int `json:"v"`

	// ListCursor is the opaque continuation token from list_folder.
	ListCursor string `json:"list_cursor"`

	// PathIDs maps lowercased paths to Dropbox file ids.
	PathIDs map[string]string `json:"path_ids,omitempty"`
}

// NewCursor creates a new empty cursor.
func NewCursor() *Cursor {
	return &Cursor{
		Version: CursorVersion,
		PathIDs: make(map[string]string),
	}
}

// Encode serialises the cursor to a base64 string for storage.
func (c *Cursor) Encode() string {
	return cursors.Encode(c)
}

// DecodeCursor deserialises a cursor from a base64 string.
func DecodeCursor(s string) (*Cursor, error) {
	if s == "" {
		return NewCursor(), nil
	}

	var cursor Cursor
	if err := cursors.Decode(s, &cursor); err != nil {
		return nil, ErrInvalidCursor
	}
	if cursor.Version > CursorVersion {
		return nil, ErrInvalidCursor
	}
	if cursor.PathIDs == nil {
		cursor.PathIDs = make(map[string]string)
	}
	return &cursor, nil
}

// IsEmpty returns true if the cursor has no sync state.
func (c *Cursor) IsEmpty() bool {
	return c.ListCursor == ""
}
