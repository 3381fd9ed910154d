// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package textextract

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/entitylink/internal/testutil"
)

// fakeExtractor implements Extractor for testing. It returns canned pages
// or an error, depending on configuration.
type fakeExtractor struct {
	pages []string
	err   error
}

func (f *fakeExtractor) Pages(r io.ReaderAt, size int64) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.pages, nil
}

func TestExtractConcatenatesPagesInOrder(t *testing.T) {
	tests := []struct {
		name  string
		pages []string
		want  string
	}{
		{"single page", []string{"NASA launched a rocket."}, "NASA launched a rocket."},
		{"no separator between pages", []string{"first page", "second page"}, "first pagesecond page"},
		{"empty page kept in place", []string{"a", "", "c"}, "ac"},
		{"no pages", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(&fakeExtractor{pages: tt.pages}, bytes.NewReader(nil), 0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractPropagatesFailure(t *testing.T) {
	boom := errors.New("broken xref")
	_, err := ExtractReader(&fakeExtractor{err: boom}, strings.NewReader("junk"))
	assert.ErrorIs(t, err, boom)
}

func TestPDFExtractorSinglePage(t *testing.T) {
	data := testutil.PDF("NASA launched a rocket.")

	text, err := ExtractReader(NewPDFExtractor(), bytes.NewReader(data))
	require.NoError(t, err)
	assert.Contains(t, text, "NASA launched a rocket.")
}

func TestPDFExtractorMultiPageConcatenation(t *testing.T) {
	data := testutil.PDF("Page one mentions NASA.", "Page two mentions ESA.", "Page three mentions JAXA.")
	x := NewPDFExtractor()

	pages, err := x.Pages(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, pages, 3)
	assert.Contains(t, pages[0], "NASA")
	assert.Contains(t, pages[1], "ESA")
	assert.Contains(t, pages[2], "JAXA")

	text, err := Extract(x, bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	assert.Equal(t, pages[0]+pages[1]+pages[2], text)
	assert.Less(t, strings.Index(text, "NASA"), strings.Index(text, "ESA"))
	assert.Less(t, strings.Index(text, "ESA"), strings.Index(text, "JAXA"))
}

func TestPDFExtractorMalformedInput(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"not a pdf", []byte("this is plain text, not a PDF")},
		{"truncated", testutil.PDF("NASA launched a rocket.")[:40]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractReader(NewPDFExtractor(), bytes.NewReader(tt.data))
			assert.ErrorIs(t, err, ErrInvalidPDF)
		})
	}
}

func TestExtractFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.pdf")
	require.NoError(t, os.WriteFile(path, testutil.PDF("Hello from a file."), 0o644))

	text, err := ExtractFile(NewPDFExtractor(), path)
	require.NoError(t, err)
	assert.Contains(t, text, "Hello from a file.")

	_, err = ExtractFile(NewPDFExtractor(), filepath.Join(t.TempDir(), "missing.pdf"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
