package filesystem

import (
	"errors"
	"time"

	"github.com/arushs/Formly-sub001/internal/connectors/cursors"
)

// CursorVersion is the current cursor format version.
const CursorVersion = 1

// ErrInvalidCursor indicates the cursor could not be decoded.
var ErrInvalidCursor = errors.New("filesystem: invalid cursor format")

// Cursor tracks filesystem sync state. Every sync is a full directory
// scan; the cursor remembers which entries the previous scan saw so
// deletions can be reported.
type Cursor struct {
	// Version is the cursor format version for future compatibility.
	Version int `json:"v"`

	// ScannedAt is when the last scan ran.
	ScannedAt time.Time `json:"scanned_at"`

	// Seen maps item ids from the last scan to their file names.
	Seen map[string]string `json:"seen,omitempty"`
}

// NewCursor creates a new empty cursor.
func NewCursor() *Cursor {
	return &Cursor{
		Version: CursorVersion,
		Seen:    make(map[string]string),
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
	if cursor.Seen == nil {
		cursor.Seen = make(map[string]string)
	}
	return &cursor, nil
}
