package dropbox

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	cursor := NewCursor()
	cursor.ListCursor = "AAFx92z"
	cursor.PathIDs["/w2.pdf"] = "id:abc123"

	decoded, err := DecodeCursor(cursor.Encode())
	require.NoError(t, err)
	assert.Equal(t, "AAFx92z", decoded.ListCursor)
	assert.Equal(t, "id:abc123", decoded.PathIDs["/w2.pdf"])
	assert.False(t, decoded.IsEmpty())
}

func TestDecodeCursor_Empty(t *testing.T) {
	cursor, err := DecodeCursor("")
	require.NoError(t, err)
	assert.True(t, cursor.IsEmpty())
	assert.NotNil(t, cursor.PathIDs)
}

func TestDecodeCursor_Garbage(t *testing.T) {
	_, err := DecodeCursor("not base64!!!")
	assert.ErrorIs(t, err, ErrInvalidCursor)

	_, err = DecodeCursor(base64.StdEncoding.EncodeToString([]byte("not json")))
	assert.ErrorIs(t, err, ErrInvalidCursor)
}

func TestDecodeCursor_FutureVersionRejected(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte(`{"v":99,"list_cursor":"x"}`))

	_, err := DecodeCursor(encoded)
	assert.ErrorIs(t, err, ErrInvalidCursor)
}

func TestIsShareURL(t *testing.T) {
	valid := []string{
		"https://www.dropbox.com/sh/abc123/AACx?dl=0",
		"https://dropbox.com/sh/abc123",
		"https://www.dropbox.com/scl/fo/xyz/h?rlkey=k",
		"https://www.dropbox.com/scl/fi/xyz/w2.pdf",
	}
	for _, raw := range valid {
		assert.True(t, IsShareURL(raw), raw)
	}

	invalid := []string{
		"https://drive.google.com/drive/folders/abc",
		"https://www.dropbox.com/home/Documents",
		"https://evil.com/sh/abc123",
		"not a url",
		"",
	}
	for _, raw := range invalid {
		assert.False(t, IsShareURL(raw), raw)
	}
}
