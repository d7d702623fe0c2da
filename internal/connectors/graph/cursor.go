package graph

import (
	"errors"

	"github.com/arushs/Formly-sub001/internal/connectors/cursors"
)

// CursorVersion is the current cursor format version.
const CursorVersion = 1

// ErrInvalidCursor indicates the cursor could not be decoded.
var ErrInvalidCursor = errors.New("graph: invalid cursor format")

// Cursor tracks Microsoft Graph sync state using the drive delta API.
type Cursor struct {
	// Version is the cursor format version for future compatibility.
	Version int `json:"v"`

	// DeltaLink is the @odata.deltaLink from the last delta page.
	// Requesting it returns only changes since that point.
	DeltaLink string `json:"delta_link"`
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
	return c.DeltaLink == ""
}
