package rag

import (
	"fmt"

	"docuchat/internal/pkg/pdfextract"
)

// Loader extracts ordered (text, page) units from a stored file. The caller
// stamps each unit with the document display name; the loader only knows
// paths.
type Loader interface {
	Load(path string) ([]Unit, error)
}

// PDFLoader loads PDF files page by page.
type PDFLoader struct{}

func NewPDFLoader() *PDFLoader {
	return &PDFLoader{}
}

func (l *PDFLoader) Load(path string) ([]Unit, error) {
	if !pdfextract.Readable(path) {
		return nil, fmt.Errorf("%w: unreadable file %s", ErrLoad, path)
	}

	pages, err := pdfextract.ExtractPages(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}

	units := make([]Unit, 0, len(pages))
	for _, page := range pages {
		units = append(units, Unit{Text: page.Text, Page: page.Number})
	}
	return units, nil
}
