// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package textextract

import (
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor reads PDFs with the pure-Go ledongthuc/pdf parser.
type PDFExtractor struct{}

// NewPDFExtractor creates a PDF extractor.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// Pages parses the PDF and returns the plain text of each page. A page
// that fails to decode fails the whole document.
func (x *PDFExtractor) Pages(r io.ReaderAt, size int64) (pages []string, err error) {
	if size == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidPDF)
	}

	// The parser panics on some malformed object streams.
	defer func() {
		if p := recover(); p != nil {
			pages, err = nil, fmt.Errorf("%w: %v", ErrInvalidPDF, p)
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}

	n := reader.NumPage()
	pages = make([]string, 0, n)
	for i := 1; i <= n; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", ErrInvalidPDF, i, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}
