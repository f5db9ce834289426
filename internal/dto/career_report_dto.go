package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fadilmartias/career-intel/internal/domain"
	"github.com/google/uuid"
)

// CandidateRef accepts a candidate id sent either as a JSON string or number.
type CandidateRef string

func (r *CandidateRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*r = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = CandidateRef(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("candidateId must be a string or number")
	}
	*r = CandidateRef(n.String())
	return nil
}

type EnsureReportRequest struct {
	CandidateID  CandidateRef `json:"candidateId" validate:"required"`
	ForceRefresh bool         `json:"forceRefresh"`
}

type CareerReportDTO struct {
	CandidateID     uuid.UUID             `json:"candidateId"`
	OverallScore    *float64              `json:"overallScore"`
	CategoryScores  domain.CategoryScores `json:"categoryScores"`
	Strengths       []string              `json:"strengths"`
	Improvements    []string              `json:"improvements"`
	OverallFeedback string                `json:"overallFeedback"`
	RawReport       map[string]any        `json:"rawReport,omitempty"`
	GeneratedAt     *time.Time            `json:"generatedAt"`
	CreatedAt       *time.Time            `json:"createdAt"`
	UpdatedAt       *time.Time            `json:"updatedAt"`
}

type EnsureReportResponse struct {
	Status domain.ReportStatus `json:"status"`
	Report *CareerReportDTO    `json:"report"`
}

func NewCareerReportDTO(r *domain.StoredReport) *CareerReportDTO {
	if r == nil {
		return nil
	}
	return &CareerReportDTO{
		CandidateID:     r.CandidateID,
		OverallScore:    r.OverallScore,
		CategoryScores:  r.CategoryScores,
		Strengths:       nonNil(r.Strengths),
		Improvements:    nonNil(r.Improvements),
		OverallFeedback: r.OverallFeedback,
		RawReport:       r.RawReport,
		GeneratedAt:     r.GeneratedAt,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
