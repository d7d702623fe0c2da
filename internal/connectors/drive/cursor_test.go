package drive

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	cursor := NewCursor()
	cursor.StartPageToken = "12345"

	decoded, err := DecodeCursor(cursor.Encode())
	require.NoError(t, err)
	assert.Equal(t, "12345", decoded.StartPageToken)
	assert.False(t, decoded.IsEmpty())
}

func TestDecodeCursor_Empty(t *testing.T) {
	cursor, err := DecodeCursor("")
	require.NoError(t, err)
	assert.True(t, cursor.IsEmpty())
	assert.Equal(t, CursorVersion, cursor.Version)
}

func TestDecodeCursor_Garbage(t *testing.T) {
	_, err := DecodeCursor("%%%")
	assert.ErrorIs(t, err, ErrInvalidCursor)

	_, err = DecodeCursor(base64.StdEncoding.EncodeToString([]byte("{broken")))
	assert.ErrorIs(t, err, ErrInvalidCursor)
}

func TestDecodeCursor_FutureVersionRejected(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte(`{"v":2,"start_page_token":"x"}`))

	_, err := DecodeCursor(encoded)
	assert.ErrorIs(t, err, ErrInvalidCursor)
}

func TestParseFolderURL(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"https://drive.google.com/drive/folders/1AbCdEf", "1AbCdEf"},
		{"https://drive.google.com/drive/folders/1AbCdEf?usp=sharing", "1AbCdEf"},
		{"https://drive.google.com/drive/u/0/folders/1AbCdEf", "1AbCdEf"},
		{"https://drive.google.com/drive/u/2/folders/1AbCdEf", "1AbCdEf"},
		{"https://drive.google.com/file/d/1AbCdEf/view", ""},
		{"https://docs.google.com/drive/folders/1AbCdEf", ""},
		{"https://www.dropbox.com/sh/abc", ""},
		{"", ""},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, ParseFolderURL(tc.raw), tc.raw)
	}
}
