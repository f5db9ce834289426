package config

import (
	"strings"
	"sync"
)

// DefaultCandidateNamespace must never change once reports exist: every
// sequential application id is hashed under it.
const DefaultCandidateNamespace = "8d4f1b6a-3c2e-4a7d-9b0e-6f1c2d3e4a5b"

const (
	ExtractorNone      = "none"
	ExtractorPDFReader = "pdfreader"
	ExtractorFitz      = "fitz"
)

type CandidateConfig struct {
	Namespace     string
	UploadRoots   []string
	DeepExtractor string
}

var (
	candidateConfig *CandidateConfig
	candidateOnce   sync.Once
)

func LoadCandidateConfig() *CandidateConfig {
	candidateOnce.Do(func() {
		v := env()
		v.SetDefault("CANDIDATE_NAMESPACE", DefaultCandidateNamespace)
		v.SetDefault("UPLOAD_ROOTS", "./uploads,./storage/uploads,/var/lib/career-intel/uploads")
		v.SetDefault("PDF_DEEP_EXTRACTOR", ExtractorNone)

		candidateConfig = &CandidateConfig{
			Namespace:     v.GetString("CANDIDATE_NAMESPACE"),
			UploadRoots:   splitList(v.GetString("UPLOAD_ROOTS")),
			DeepExtractor: strings.ToLower(strings.TrimSpace(v.GetString("PDF_DEEP_EXTRACTOR"))),
		}
	})
	return candidateConfig
}
