package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fadilmartias/career-intel/internal/config"
	"github.com/fadilmartias/career-intel/internal/domain"
	"github.com/fadilmartias/career-intel/internal/logger"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// contentGenerator is the subset of *genai.Models used for scoring.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type GeminiService struct {
	models         contentGenerator
	model          string
	RequestTimeout time.Duration
	log            *zap.Logger
}

// NewGeminiService builds a Gemini backed scorer. Without GEMINI_API_KEY the
// service is returned unconfigured and every Score call fails.
func NewGeminiService(ctx context.Context, cfg *config.GeminiConfig, timeout time.Duration, log *zap.Logger) (*GeminiService, error) {
	s := &GeminiService{
		model:          cfg.Model,
		RequestTimeout: timeout,
		log:            logger.WithScoring(log, config.ProviderGemini, cfg.Model),
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return s, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	s.models = client.Models
	return s, nil
}

func newGeminiServiceWithGenerator(models contentGenerator, model string, log *zap.Logger) *GeminiService {
	return &GeminiService{models: models, model: model, log: logger.OrNop(log)}
}

func (s *GeminiService) Provider() string { return config.ProviderGemini }
func (s *GeminiService) Model() string    { return s.model }

func (s *GeminiService) Score(ctx context.Context, input domain.ScoringContext) (*domain.ScoringResult, error) {
	if s.models == nil || s.model == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY and GEMINI_MODEL are required", domain.ErrScoringServiceMisconfigured)
	}

	userText, att, err := buildUserPrompt(input)
	if err != nil {
		return nil, err
	}
	parts := []*genai.Part{genai.NewPartFromText(userText)}
	if att != nil {
		data, err := base64.StdEncoding.DecodeString(att.Base64)
		if err != nil {
			s.log.Warn("dropping undecodable career card attachment", zap.Error(err))
		} else {
			parts = append(parts, genai.NewPartFromBytes(data, att.Mime))
		}
	}

	if s.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.RequestTimeout)
		defer cancel()
	}

	genConfig, err := s.generateConfig()
	if err != nil {
		return nil, err
	}
	resp, err := s.models.GenerateContent(ctx, s.model,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
		genConfig,
	)
	if err != nil {
		s.log.Error("gemini scoring failed", zap.Error(err))
		return nil, upstreamFromGenai(err)
	}

	arguments, err := geminiArguments(resp)
	if err != nil {
		return nil, err
	}
	if err := ValidateArguments(arguments); err != nil {
		return nil, err
	}

	result := NormalizeReport(arguments)
	result.Provider = config.ProviderGemini
	result.Model = s.model
	if resp.ModelVersion != "" {
		result.Model = resp.ModelVersion
	}
	return &result, nil
}

func (s *GeminiService) generateConfig() (*genai.GenerateContentConfig, error) {
	declaration, err := reportDeclaration()
	if err != nil {
		return nil, err
	}
	return &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(float32(0.1)),
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		Tools: []*genai.Tool{{
			FunctionDeclarations: []*genai.FunctionDeclaration{declaration},
		}},
		ToolConfig: &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{
				Mode:                 genai.FunctionCallingConfigModeAny,
				AllowedFunctionNames: []string{ReportFunctionName},
			},
		},
	}, nil
}

// reportDeclaration declares the report function from the embedded JSON
// schema, the same document the OpenAI-compatible backend sends.
func reportDeclaration() (*genai.FunctionDeclaration, error) {
	var params map[string]any
	if err := json.Unmarshal(careerReportSchema, &params); err != nil {
		return nil, fmt.Errorf("decode report schema: %w", err)
	}
	return &genai.FunctionDeclaration{
		Name:                 ReportFunctionName,
		Description:          reportFunctionDescription,
		ParametersJsonSchema: params,
	}, nil
}

func geminiArguments(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates in response", domain.ErrScoringResponseInvalid)
	}
	for _, call := range resp.FunctionCalls() {
		if call == nil || call.Name != ReportFunctionName {
			continue
		}
		raw, err := json.Marshal(call.Args)
		if err != nil {
			return "", fmt.Errorf("%w: encode function args: %v", domain.ErrScoringResponseInvalid, err)
		}
		return string(raw), nil
	}
	return "", fmt.Errorf("%w: %s was not called", domain.ErrScoringResponseInvalid, ReportFunctionName)
}

func upstreamFromGenai(err error) error {
	upstream := &domain.UpstreamError{Service: scoringServiceName, Body: err.Error(), Kind: domain.ErrScoringRequestFailed}

	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		upstream.StatusCode, upstream.Body = apiErr.Code, apiErr.Message
	case errors.As(err, &apiErrPtr) && apiErrPtr != nil:
		upstream.StatusCode, upstream.Body = apiErrPtr.Code, apiErrPtr.Message
	}
	return upstream
}
