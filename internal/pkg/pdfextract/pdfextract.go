package pdfextract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

var ErrNotPDF = errors.New("not a pdf document")

var magic = []byte("%PDF-")

// IsPDF reports whether the first bytes of r carry the PDF header.
func IsPDF(r io.ReaderAt) bool {
	head := make([]byte, len(magic))
	n, _ := r.ReadAt(head, 0)
	return n == len(magic) && bytes.Equal(head, magic)
}

// ExtractText returns the plain text of a PDF of the given size.
// A PDF without a text layer yields "" and a nil error.
func ExtractText(r io.ReaderAt, size int64) (string, error) {
	if size <= 0 {
		return "", nil
	}
	if !IsPDF(r) {
		return "", ErrNotPDF
	}
	pdfReader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("open pdf failed: %w", err)
	}
	plainReader, err := pdfReader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text failed: %w", err)
	}
	out, err := io.ReadAll(plainReader)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
