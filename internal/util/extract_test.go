package util

import (
	"testing"

	"github.com/fadilmartias/career-intel/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestNewPDFTextExtractor(t *testing.T) {
	assert.Nil(t, NewPDFTextExtractor(config.ExtractorNone))
	assert.Nil(t, NewPDFTextExtractor("tesseract"))
	assert.Equal(t, config.ExtractorFitz, NewPDFTextExtractor(config.ExtractorFitz).Name())
	assert.Equal(t, config.ExtractorPDFReader, NewPDFTextExtractor(config.ExtractorPDFReader).Name())
}

func TestPDFReaderExtractorRejectsGarbage(t *testing.T) {
	_, err := PDFReaderExtractor{}.ExtractText([]byte("definitely not a pdf"))
	assert.Error(t, err)
}
