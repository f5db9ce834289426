package domain

import (
	"time"

	"github.com/google/uuid"
)

// CanonicalIdentity is the resolved candidate key used for caching and storage.
// SourceApplicationID is set only when the caller supplied a sequential id.
type CanonicalIdentity struct {
	StableID            uuid.UUID `json:"stableId"`
	SourceApplicationID *int64    `json:"sourceApplicationId"`
}

const (
	FormatPDFExtractedText = "pdf_extracted_text"
	FormatPDFAttachment    = "pdf_attachment"

	// InlineBinarySentinel replaces inline payloads before hashing.
	InlineBinarySentinel = "[inline-binary-omitted]"
)

// CareerCardDocument is synthesised from an uploaded PDF career card.
type CareerCardDocument struct {
	Format              string  `json:"format"`
	Filename            string  `json:"filename"`
	Mime                string  `json:"mime"`
	Text                string  `json:"text"`
	ApproxCharacters    int     `json:"approx_characters"`
	SizeBytes           int64   `json:"size_bytes"`
	InlineDataBase64    *string `json:"inline_data_base64"`
	InlineDataTruncated bool    `json:"inline_data_truncated"`
}

// ScoringContext is the exact payload whose content decides cache validity.
// CareerCardData is either decoded candidate JSON or a *CareerCardDocument.
type ScoringContext struct {
	CareerCardData     any    `json:"careerCardData"`
	CompanyDescription string `json:"companyDescription"`
	RoleDescription    string `json:"roleDescription"`
}

// Provenance describes where the scoring inputs came from.
type Provenance struct {
	ApplicationID    *int64 `json:"application_id"`
	JobID            *int64 `json:"job_id"`
	OrgID            *int64 `json:"org_id"`
	JobTitle         string `json:"job_title"`
	CompanyName      string `json:"company_name"`
	CareerCardSource string `json:"career_card_source"`
}

type CandidateContext struct {
	Identity   CanonicalIdentity
	Scoring    ScoringContext
	InputHash  string
	Provenance Provenance
}

type CategoryScore struct {
	Score    *float64 `json:"score"`
	Feedback string   `json:"feedback"`
}

type CategoryScores struct {
	TechnicalSkills  CategoryScore `json:"technicalSkills"`
	Experience       CategoryScore `json:"experience"`
	CulturalFit      CategoryScore `json:"culturalFit"`
	ProjectAlignment CategoryScore `json:"projectAlignment"`
}

// ScoringResult is the normalised output of one scoring call.
type ScoringResult struct {
	OverallScore    *float64       `json:"overallScore"`
	CategoryScores  CategoryScores `json:"categoryScores"`
	Strengths       []string       `json:"strengths"`
	Improvements    []string       `json:"improvements"`
	OverallFeedback string         `json:"overallFeedback"`

	Provider string `json:"-"`
	Model    string `json:"-"`
}

// ReportMetadata is embedded in raw_report.metadata on every write.
type ReportMetadata struct {
	InputHash           string    `json:"input_hash"`
	Model               string    `json:"model"`
	Provider            string    `json:"provider"`
	SourceApplicationID *int64    `json:"source_application_id"`
	ApplicationID       *int64    `json:"application_id"`
	JobID               *int64    `json:"job_id"`
	OrgID               *int64    `json:"org_id"`
	JobTitle            string    `json:"job_title"`
	CompanyName         string    `json:"company_name"`
	CareerCardSource    string    `json:"career_card_source"`
	GeneratedAt         time.Time `json:"generated_at"`
}

// StoredReport is one row of the remote report store.
type StoredReport struct {
	CandidateID     uuid.UUID      `json:"candidateId"`
	OverallScore    *float64       `json:"overallScore"`
	CategoryScores  CategoryScores `json:"categoryScores"`
	Strengths       []string       `json:"strengths"`
	Improvements    []string       `json:"improvements"`
	OverallFeedback string         `json:"overallFeedback"`
	RawReport       map[string]any `json:"rawReport"`
	InputHash       string         `json:"-"`
	GeneratedAt     *time.Time     `json:"generatedAt"`
	CreatedAt       *time.Time     `json:"createdAt"`
	UpdatedAt       *time.Time     `json:"updatedAt"`
}

type ReportStatus string

const (
	StatusCached    ReportStatus = "cached"
	StatusRefreshed ReportStatus = "refreshed"
	StatusCreated   ReportStatus = "created"
)

type EnsureResult struct {
	Status ReportStatus  `json:"status"`
	Report *StoredReport `json:"report"`
}
