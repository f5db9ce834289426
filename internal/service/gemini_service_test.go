package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/fadilmartias/career-intel/internal/config"
	"github.com/fadilmartias/career-intel/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeGenerator struct {
	resp     *genai.GenerateContentResponse
	err      error
	calls    int
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

func (f *fakeGenerator) GenerateContent(_ context.Context, _ string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls++
	f.contents = contents
	f.config = cfg
	return f.resp, f.err
}

func functionCallResponse(name string, args map[string]any) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Role:  genai.RoleModel,
				Parts: []*genai.Part{{FunctionCall: &genai.FunctionCall{Name: name, Args: args}}},
			},
		}},
	}
}

func TestGeminiScore(t *testing.T) {
	gen := &fakeGenerator{resp: functionCallResponse(ReportFunctionName, map[string]any{
		"overallScore": 64.555,
		"categoryScores": map[string]any{
			"technicalSkills": map[string]any{"score": 70, "feedback": "fine"},
		},
		"strengths":       []any{"Go"},
		"overallFeedback": "Decent",
	})}
	svc := newGeminiServiceWithGenerator(gen, "gemini-2.5-flash", nil)

	result, err := svc.Score(context.Background(), pdfContext())
	require.NoError(t, err)
	assert.Equal(t, 1, gen.calls)

	assert.Equal(t, 64.56, *result.OverallScore)
	assert.Equal(t, "fine", result.CategoryScores.TechnicalSkills.Feedback)
	assert.Nil(t, result.CategoryScores.Experience.Score)
	assert.Equal(t, config.ProviderGemini, result.Provider)
	assert.Equal(t, "gemini-2.5-flash", result.Model)

	require.NotNil(t, gen.config.ToolConfig)
	assert.Equal(t, genai.FunctionCallingConfigModeAny, gen.config.ToolConfig.FunctionCallingConfig.Mode)
	assert.Equal(t, ReportFunctionName, gen.config.Tools[0].FunctionDeclarations[0].Name)

	require.Len(t, gen.contents, 1)
	parts := gen.contents[0].Parts
	require.Len(t, parts, 2)
	require.NotNil(t, parts[1].InlineData)
	assert.Equal(t, "application/pdf", parts[1].InlineData.MIMEType)
	assert.Equal(t, []byte("%PDF-1.4"), parts[1].InlineData.Data)
}

func TestGeminiScoreWithoutReportCall(t *testing.T) {
	cases := map[string]*genai.GenerateContentResponse{
		"nil response":   nil,
		"other function": functionCallResponse("lookup", map[string]any{"q": 1}),
		"empty args":     functionCallResponse(ReportFunctionName, nil),
		"text only": {Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: "score: 80"}}},
		}}},
	}
	for name, resp := range cases {
		t.Run(name, func(t *testing.T) {
			svc := newGeminiServiceWithGenerator(&fakeGenerator{resp: resp}, "gemini-2.5-flash", nil)
			_, err := svc.Score(context.Background(), domain.ScoringContext{})
			assert.True(t, errors.Is(err, domain.ErrScoringResponseInvalid), "got %v", err)
		})
	}
}

func TestGeminiScoreAPIError(t *testing.T) {
	apiErr := genai.APIError{Code: http.StatusServiceUnavailable, Message: "overloaded", Status: "UNAVAILABLE"}
	gen := &fakeGenerator{err: fmt.Errorf("generate: %w", apiErr)}
	svc := newGeminiServiceWithGenerator(gen, "gemini-2.5-flash", nil)

	_, err := svc.Score(context.Background(), domain.ScoringContext{})
	require.Error(t, err)
	assert.Equal(t, 1, gen.calls, "no automatic retry")

	var upstream *domain.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.True(t, errors.Is(err, domain.ErrScoringRequestFailed))
	assert.Equal(t, http.StatusServiceUnavailable, upstream.StatusCode)
	assert.Equal(t, "overloaded", upstream.Body)
}

func TestGeminiScoreTransportError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("connection reset")}
	svc := newGeminiServiceWithGenerator(gen, "gemini-2.5-flash", nil)

	_, err := svc.Score(context.Background(), domain.ScoringContext{})
	var upstream *domain.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Zero(t, upstream.StatusCode)
	assert.True(t, errors.Is(err, domain.ErrScoringRequestFailed))
}

func TestGeminiDeclarationUsesEmbeddedSchema(t *testing.T) {
	declaration, err := reportDeclaration()
	require.NoError(t, err)

	assert.Equal(t, ReportFunctionName, declaration.Name)
	assert.Nil(t, declaration.Parameters)
	raw, err := json.Marshal(declaration.ParametersJsonSchema)
	require.NoError(t, err)
	assert.JSONEq(t, string(careerReportSchema), string(raw))
}
