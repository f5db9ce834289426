package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fadilmartias/career-intel/internal/config"
	"github.com/fadilmartias/career-intel/internal/contenthash"
	"github.com/fadilmartias/career-intel/internal/domain"
	"go.uber.org/zap"
)

const (
	ReportFunctionName        = "submit_career_report"
	reportFunctionDescription = "Submit the structured career intelligence report for the candidate."

	systemInstruction = `You are a career intelligence analyst assessing a job candidate.
Evaluate the candidate against the role and the company on four dimensions:
- technicalSkills: how well the candidate's technical skills match the role requirements
- experience: how relevant and deep the candidate's experience is for the role
- culturalFit: how well the candidate aligns with the company's culture and values
- projectAlignment: how closely the candidate's projects align with the work of the role
Score each dimension and the overall fit from 0 to 100 and give specific, evidence-based feedback.
List the candidate's key strengths and concrete improvements.
If a PDF career card is attached, read it as the primary source for the candidate.
Respond only by calling the submit_career_report function.`

	// responseLogLimit bounds upstream bodies written to logs.
	responseLogLimit = 500
)

type ScoringServiceInterface interface {
	Score(ctx context.Context, input domain.ScoringContext) (*domain.ScoringResult, error)
	Provider() string
	Model() string
}

// NewScoringService returns the backend selected by cfg.Provider. A missing
// credential is not an error here; Score reports it per call.
func NewScoringService(ctx context.Context, cfg *config.ScoringConfig, gemini *config.GeminiConfig, log *zap.Logger) (ScoringServiceInterface, error) {
	switch cfg.Provider {
	case "", config.ProviderOpenAI:
		return NewOpenRouterService(cfg, log), nil
	case config.ProviderGemini:
		return NewGeminiService(ctx, gemini, cfg.Timeout, log)
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", domain.ErrScoringServiceMisconfigured, cfg.Provider)
	}
}

type attachment struct {
	Filename string
	Mime     string
	Base64   string
}

// buildUserPrompt renders the scoring context as text. Inline PDF bytes are
// lifted out of the career card and returned as a separate attachment.
func buildUserPrompt(input domain.ScoringContext) (string, *attachment, error) {
	card, att := splitAttachment(input.CareerCardData)
	cardJSON, err := json.MarshalIndent(card, "", "  ")
	if err != nil {
		return "", nil, fmt.Errorf("encode career card: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("Company description:\n")
	sb.WriteString(orNone(input.CompanyDescription))
	sb.WriteString("\n\nRole description:\n")
	sb.WriteString(orNone(input.RoleDescription))
	sb.WriteString("\n\nCandidate career card (JSON):\n")
	sb.Write(cardJSON)
	if att != nil {
		sb.WriteString("\n\nThe original career card file is attached.")
	}
	return sb.String(), att, nil
}

// splitAttachment strips every inline binary payload from the card. The first
// non-empty one is returned as the attachment.
func splitAttachment(data any) (any, *attachment) {
	var att *attachment
	card := contenthash.MapInline(data, func(p contenthash.InlinePayload) *string {
		if att == nil && p.Data != "" {
			att = &attachment{Filename: p.Filename, Mime: p.Mime, Base64: p.Data}
		}
		return nil
	})
	if att != nil && att.Mime == "" {
		att.Mime = "application/pdf"
	}
	return card, att
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(not provided)"
	}
	return s
}
