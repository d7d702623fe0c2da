package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arushs/Formly-sub001/internal/core/domain"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0600))
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, New(dir).Validate(context.Background()))

	err := New(filepath.Join(dir, "missing")).Validate(context.Background())
	assert.ErrorIs(t, err, domain.ErrProviderValidation)

	writeFile(t, dir, "plain.txt", "x")
	err = New(filepath.Join(dir, "plain.txt")).Validate(context.Background())
	assert.ErrorIs(t, err, domain.ErrProviderValidation)
}

func TestSyncFolder_FullScan(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "w2.pdf", "pdf")
	writeFile(t, dir, "notes.txt", "text")
	writeFile(t, dir, ".hidden", "skip me")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0700))

	connector := New(dir)
	result, err := connector.SyncFolder(context.Background(), domain.FolderLocator{}, "")
	require.NoError(t, err)

	require.Len(t, result.Files, 2, "dot-files and sub-directories are skipped")
	names := []string{result.Files[0].Name, result.Files[1].Name}
	assert.ElementsMatch(t, []string{"w2.pdf", "notes.txt"}, names)
	assert.NotEmpty(t, result.Checkpoint)

	for _, f := range result.Files {
		assert.Equal(t, f.Name, f.ID, "file names double as item ids")
		assert.False(t, f.Deleted)
		assert.NotEmpty(t, f.MimeType)
	}
}

func TestSyncFolder_ReportsDeletions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "w2.pdf", "pdf")
	writeFile(t, dir, "old.pdf", "pdf")

	connector := New(dir)
	first, err := connector.SyncFolder(context.Background(), domain.FolderLocator{}, "")
	require.NoError(t, err)
	require.Len(t, first.Files, 2)

	require.NoError(t, os.Remove(filepath.Join(dir, "old.pdf")))

	second, err := connector.SyncFolder(context.Background(), domain.FolderLocator{}, first.Checkpoint)
	require.NoError(t, err)

	var deleted []string
	for _, f := range second.Files {
		if f.Deleted {
			deleted = append(deleted, f.ID)
		}
	}
	assert.Equal(t, []string{"old.pdf"}, deleted)
}

func TestSyncFolder_UndecodableCheckpointRestarts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "w2.pdf", "pdf")

	connector := New(dir)
	result, err := connector.SyncFolder(context.Background(), domain.FolderLocator{}, "garbage-checkpoint")
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.False(t, result.Files[0].Deleted)
}

func TestSyncFolder_FolderLocatorOverridesRoot(t *testing.T) {
	rootDir := t.TempDir()
	otherDir := t.TempDir()
	writeFile(t, otherDir, "elsewhere.pdf", "pdf")

	connector := New(rootDir)
	result, err := connector.SyncFolder(context.Background(), domain.FolderLocator{FolderID: otherDir}, "")
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.Equal(t, "elsewhere.pdf", result.Files[0].Name)
}

func TestDownloadFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "w2.pdf", "pdf content")

	connector := New(dir)
	content, err := connector.DownloadFile(context.Background(), "w2.pdf")
	require.NoError(t, err)
	assert.Equal(t, "w2.pdf", content.Name)
	assert.Equal(t, []byte("pdf content"), content.Data)
	assert.Equal(t, int64(len("pdf content")), content.Size)
}

func TestDownloadFile_Missing(t *testing.T) {
	connector := New(t.TempDir())

	_, err := connector.DownloadFile(context.Background(), "nope.pdf")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDownloadFile_RefusesOversizedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "huge.pdf")
	// Sparse file: the size check runs before any read.
	require.NoError(t, os.WriteFile(path, nil, 0600))
	require.NoError(t, os.Truncate(path, domain.MaxDownloadSize+1))

	connector := New(dir)
	_, err := connector.DownloadFile(context.Background(), "huge.pdf")
	require.ErrorIs(t, err, domain.ErrFileTooLarge)
	assert.Contains(t, err.Error(), "huge.pdf")
	assert.Contains(t, err.Error(), fmt.Sprintf("%d bytes", domain.MaxDownloadSize+1))
}

func TestDownloadFile_RejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "w2.pdf", "pdf")

	connector := New(filepath.Join(dir))
	for _, id := range []string{"../w2.pdf", "sub/w2.pdf", "/etc/passwd", ".."} {
		_, err := connector.DownloadFile(context.Background(), id)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, id)
	}
}

func TestResolveURL(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	connector := New(dir)

	locator, err := connector.ResolveURL(ctx, dir)
	require.NoError(t, err)
	require.NotNil(t, locator)
	assert.Equal(t, dir, locator.FolderID)

	locator, err = connector.ResolveURL(ctx, "file://"+dir)
	require.NoError(t, err)
	require.NotNil(t, locator)
	assert.Equal(t, dir, locator.FolderID)

	// Relative paths are not recognised as folder URLs.
	_, err = connector.ResolveURL(ctx, "some/relative/path")
	assert.ErrorIs(t, err, domain.ErrNoMatch)

	// Absolute but nonexistent: recognised, unverifiable.
	locator, err = connector.ResolveURL(ctx, filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Nil(t, locator)
}

func TestCursorRoundTrip(t *testing.T) {
	cursor := NewCursor()
	cursor.Seen["w2.pdf"] = "w2.pdf"

	decoded, err := DecodeCursor(cursor.Encode())
	require.NoError(t, err)
	assert.Equal(t, "w2.pdf", decoded.Seen["w2.pdf"])

	_, err = DecodeCursor("not a cursor")
	assert.ErrorIs(t, err, ErrInvalidCursor)
}
