package pdfextract

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPDF(t *testing.T) {
	assert.True(t, IsPDF(bytes.NewReader([]byte("%PDF-1.7\n..."))))
	assert.False(t, IsPDF(bytes.NewReader([]byte("plain text"))))
	assert.False(t, IsPDF(bytes.NewReader(nil)))
}

func TestExtractText_RejectsNonPDF(t *testing.T) {
	data := []byte("just some notes")
	_, err := ExtractText(bytes.NewReader(data), int64(len(data)))
	assert.ErrorIs(t, err, ErrNotPDF)
}

func TestExtractText_EmptyInput(t *testing.T) {
	text, err := ExtractText(bytes.NewReader(nil), 0)
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestExtractText_ReadsTextLayer(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "motion.pdf"))
	require.NoError(t, err)
	require.True(t, IsPDF(bytes.NewReader(data)))

	text, err := ExtractText(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	assert.Contains(t, text, "Motion to compel discovery")
	assert.Equal(t, strings.TrimSpace(text), text)
}

func TestExtractText_TruncatedPDF(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "motion.pdf"))
	require.NoError(t, err)
	cut := data[:len(data)/2]

	_, err = ExtractText(bytes.NewReader(cut), int64(len(cut)))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotPDF)
}
