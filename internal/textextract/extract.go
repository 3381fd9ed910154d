// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package textextract turns an uploaded document into plain text.
// Pages are extracted in order and appended without a separator; no
// layout or structure is preserved.
package textextract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrInvalidPDF marks input that could not be parsed as a PDF.
var ErrInvalidPDF = errors.New("invalid PDF")

// Extractor transforms a document into the ordered text of its pages.
// The PDF backend implements this interface; tests substitute fakes.
type Extractor interface {
	// Pages returns the extracted text of each page in page order.
	Pages(r io.ReaderAt, size int64) ([]string, error)
}

// Extract returns the concatenation of every page's text, in page order.
func Extract(e Extractor, r io.ReaderAt, size int64) (string, error) {
	pages, err := e.Pages(r, size)
	if err != nil {
		return "", err
	}
	var b bytes.Buffer
	for _, p := range pages {
		b.WriteString(p)
	}
	return b.String(), nil
}

// ExtractReader buffers a forward-only stream (such as a multipart upload)
// and extracts it. The stream is consumed once.
func ExtractReader(e Extractor, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading document: %w", err)
	}
	return Extract(e, bytes.NewReader(data), int64(len(data)))
}

// ExtractFile opens the document at path and extracts it.
func ExtractFile(e Extractor, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening document %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}

	text, err := Extract(e, f, info.Size())
	if err != nil {
		return "", fmt.Errorf("extracting %s: %w", path, err)
	}
	return text, nil
}
