package util

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/fadilmartias/career-intel/internal/config"
	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"
)

// PDFTextExtractor is a full PDF parser used when the BT/ET lexer finds nothing.
type PDFTextExtractor interface {
	Name() string
	ExtractText(data []byte) (string, error)
}

// NewPDFTextExtractor returns the extractor for kind, or nil for "none" and
// unknown kinds.
func NewPDFTextExtractor(kind string) PDFTextExtractor {
	switch kind {
	case config.ExtractorFitz:
		return FitzExtractor{}
	case config.ExtractorPDFReader:
		return PDFReaderExtractor{}
	default:
		return nil
	}
}

// FitzExtractor reads the text layer through MuPDF.
type FitzExtractor struct{}

func (FitzExtractor) Name() string { return config.ExtractorFitz }

func (FitzExtractor) ExtractText(data []byte) (text string, err error) {
	defer recoverInto(&err)

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	var fullText strings.Builder
	for n := 0; n < doc.NumPage(); n++ {
		pageText, err := doc.Text(n)
		if err != nil {
			continue
		}
		if pageText = strings.TrimSpace(pageText); pageText != "" {
			fullText.WriteString(pageText)
			fullText.WriteString("\n\n")
		}
	}
	return fullText.String(), nil
}

// PDFReaderExtractor is the pure-Go alternative to FitzExtractor.
type PDFReaderExtractor struct{}

func (PDFReaderExtractor) Name() string { return config.ExtractorPDFReader }

func (PDFReaderExtractor) ExtractText(data []byte) (text string, err error) {
	defer recoverInto(&err)

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var textBuilder strings.Builder
	for pageIndex := 1; pageIndex <= r.NumPage(); pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		textBuilder.WriteString(pageText)
		textBuilder.WriteString("\n\n")
	}
	return textBuilder.String(), nil
}

// recoverInto turns a parser panic on a malformed file into an error.
func recoverInto(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("pdf parser panic: %v", r)
	}
}
