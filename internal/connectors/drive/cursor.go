package drive

import (
	"errors"

	"github.com/arushs/Formly-sub001/internal/connectors/cursors"
)

// CursorVersion is the current cursor format version.
const CursorVersion = 1

// ErrInvalidCursor indicates the cursor could not be decoded.
var ErrInvalidCursor = errors.New("drive: invalid cursor format")

// Cursor tracks Google Drive sync state using the Changes API.
type Cursor struct {
	// Version is the cursor format version for future compatibility.
	Version int `json:"v"`

	// StartPageToken is the token from changes.getStartPageToken().
	// Used as the starting point for changes.list() in incremental sync.
	StartPageToken string `json:"start_page_token"`
}

// NewCursor creates a new empty cursor.
func NewCursor() *Cursor {
	return &Cursor{
		Version: CursorVersion,
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
	return &cursor, nil
}

// IsEmpty returns true if the cursor has no sync state.
func (c *Cursor) IsEmpty() bool {
	return c.StartPageToken == ""
}
