package app

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casedesk/internal/repository"
)

const fiftyMiB = 50 << 20

func newFileService(t *testing.T, max int64) (*FileService, string) {
	t.Helper()
	root := filepath.Join(t.TempDir(), "uploads")
	return NewFileService(repository.NewFileRepository(root, "/uploads"), max, nil), root
}

func TestFileService_ResolveStorageRootCreatesDir(t *testing.T) {
	svc, root := newFileService(t, fiftyMiB)

	got, err := svc.ResolveStorageRoot()
	require.NoError(t, err)
	assert.Equal(t, root, got)
	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// idempotent
	_, err = svc.ResolveStorageRoot()
	require.NoError(t, err)
}

func TestFileService_ResolveStorageRootFailure(t *testing.T) {
	parent := t.TempDir()
	blocker := filepath.Join(parent, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	svc := NewFileService(repository.NewFileRepository(filepath.Join(blocker, "uploads"), ""), fiftyMiB, nil)
	_, err := svc.ResolveStorageRoot()
	assert.ErrorIs(t, err, ErrStorage)
}

func TestFileService_RoundTrip(t *testing.T) {
	svc, _ := newFileService(t, fiftyMiB)
	data := []byte("retainer agreement")

	saved, err := svc.SaveFile(SaveFileInput{Name: "a.txt", Content: bytes.NewReader(data), Size: int64(len(data))})
	require.NoError(t, err)
	assert.Equal(t, "/uploads/a.txt", saved.Path)

	files, err := svc.ListFiles()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "a.txt", files[0].Name)
	assert.Equal(t, int64(len(data)), files[0].Size)

	require.NoError(t, svc.DeleteFile("a.txt"))
	files, err = svc.ListFiles()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestFileService_ListUninitializedRoot(t *testing.T) {
	svc, _ := newFileService(t, fiftyMiB)

	files, err := svc.ListFiles()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestFileService_DeclaredSizeOverLimit(t *testing.T) {
	svc, root := newFileService(t, fiftyMiB)

	_, err := svc.SaveFile(SaveFileInput{Name: "huge.pdf", Content: strings.NewReader("x"), Size: fiftyMiB + 1})
	assert.ErrorIs(t, err, ErrPayloadTooLarge)

	_, statErr := os.Stat(filepath.Join(root, "huge.pdf"))
	assert.True(t, os.IsNotExist(statErr), "no file is written")
}

func TestFileService_StreamOverLimit(t *testing.T) {
	svc, root := newFileService(t, 8)

	_, err := svc.SaveFile(SaveFileInput{Name: "liar.txt", Content: strings.NewReader("more than eight bytes"), Size: -1})
	assert.ErrorIs(t, err, ErrPayloadTooLarge)

	_, statErr := os.Stat(filepath.Join(root, "liar.txt"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestFileService_ExactlyAtLimit(t *testing.T) {
	svc, _ := newFileService(t, 4)

	saved, err := svc.SaveFile(SaveFileInput{Name: "four.txt", Content: strings.NewReader("1234"), Size: 4})
	require.NoError(t, err)
	assert.Equal(t, int64(4), saved.Size)
}

func TestFileService_InvalidNames(t *testing.T) {
	svc, _ := newFileService(t, fiftyMiB)

	for _, name := range []string{"", "../x.txt", "/etc/passwd", "a\x00b", ".."} {
		_, err := svc.SaveFile(SaveFileInput{Name: name, Content: strings.NewReader("x"), Size: 1})
		assert.ErrorIs(t, err, ErrInvalidInput, "%q", name)
	}
	assert.ErrorIs(t, svc.DeleteFile("../x.txt"), ErrInvalidInput)
}

func TestFileService_DeleteMissing(t *testing.T) {
	svc, _ := newFileService(t, fiftyMiB)
	assert.ErrorIs(t, svc.DeleteFile("nonexistent.txt"), ErrFileNotFound)
}

func TestFileService_ExtractTextRejectsNonPDF(t *testing.T) {
	svc, _ := newFileService(t, fiftyMiB)
	_, err := svc.SaveFile(SaveFileInput{Name: "notes.txt", Content: strings.NewReader("plain"), Size: 5})
	require.NoError(t, err)
	_, err = svc.SaveFile(SaveFileInput{Name: "fake.pdf", Content: strings.NewReader("not really"), Size: 10})
	require.NoError(t, err)

	_, err = svc.ExtractText("notes.txt")
	assert.ErrorIs(t, err, ErrUnsupportedType)
	_, err = svc.ExtractText("fake.pdf")
	assert.ErrorIs(t, err, ErrUnsupportedType)
	_, err = svc.ExtractText("missing.pdf")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestFileService_StorageHealthy(t *testing.T) {
	svc, _ := newFileService(t, fiftyMiB)
	assert.NoError(t, svc.StorageHealthy())
}
