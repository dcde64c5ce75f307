// Package pagesource turns a PDF stream into per-page raw text.
package pagesource

import (
	"context"
	"fmt"
	"io"
	"strings"

	"code.sajari.com/docconv"

	"github.com/umccanna/regulation-summarization/internal/core"
)

// PDFPageSource extracts text with docconv (pdftotext under the hood), which
// separates pages with form feed characters. Splitting on those recovers the
// per-page stream the chunker needs for provenance tagging.
type PDFPageSource struct{}

func NewPDFPageSource() *PDFPageSource {
	return &PDFPageSource{}
}

func (s *PDFPageSource) Pages(ctx context.Context, r io.Reader) ([]string, error) {
	res, err := docconv.Convert(r, "application/pdf", false)
	if err != nil {
		return nil, fmt.Errorf("pdf extraction: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if res.Body == "" {
		return nil, nil
	}

	pages := strings.Split(res.Body, "\f")
	// pdftotext leaves a trailing form feed after the last page.
	if len(pages) > 0 && strings.TrimSpace(pages[len(pages)-1]) == "" {
		pages = pages[:len(pages)-1]
	}
	return pages, nil
}

var _ core.PageSource = (*PDFPageSource)(nil)
