// Package cursors holds the shared wire format for provider sync
// cursors: JSON serialised, base64 wrapped so checkpoints stay opaque
// strings to the store. Each provider keeps its own cursor type and
// version; this package only owns the envelope.
package cursors

import (
	"encoding/base64"
	"encoding/json"
	"errors"
)

// ErrInvalid indicates a checkpoint could not be decoded.
var ErrInvalid = errors.New("invalid cursor format")

// Encode serialises a cursor to a base64 string for storage.
func Encode(cursor any) string {
	data, err := json.Marshal(cursor)
	if err != nil {
		return ""
	}
	return base64.StdEncoding.EncodeToString(data)
}

// Decode deserialises a base64 checkpoint into cursor.
func Decode(s string, cursor any) error {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return ErrInvalid
	}
	if err := json.Unmarshal(data, cursor); err != nil {
		return ErrInvalid
	}
	return nil
}
