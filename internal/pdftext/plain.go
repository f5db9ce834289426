package pdftext

import "unicode/utf8"

const (
	binarySampleSize = 1000
	binaryThreshold  = 0.3
)

// PlainText decodes data as UTF-8 text. It returns "" for anything that looks
// binary, which includes most real PDFs with compressed streams.
func PlainText(data []byte) string {
	if len(data) == 0 || !utf8.Valid(data) || looksBinary(data) {
		return ""
	}
	return Normalize(string(data))
}

// looksBinary reports whether more than binaryThreshold of the leading bytes
// are control characters other than tab, CR and LF.
func looksBinary(data []byte) bool {
	sample := min(binarySampleSize, len(data))
	nonPrintable := 0
	for _, c := range data[:sample] {
		if c < 32 && c != '\n' && c != '\r' && c != '\t' {
			nonPrintable++
		}
	}
	return float64(nonPrintable)/float64(sample) > binaryThreshold
}
