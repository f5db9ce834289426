package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fadilmartias/career-intel/internal/config"
	"github.com/fadilmartias/career-intel/internal/domain"
	"github.com/fadilmartias/career-intel/internal/logger"
	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const scoringServiceName = "scoring"

// OpenRouterService scores candidates through an OpenAI-compatible chat
// completions endpoint, forcing a single call to submit_career_report.
type OpenRouterService struct {
	client *resty.Client
	apiKey string
	model  string
	log    *zap.Logger
}

func NewOpenRouterService(cfg *config.ScoringConfig, log *zap.Logger) *OpenRouterService {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	return &OpenRouterService{
		client: client,
		apiKey: strings.TrimSpace(cfg.APIKey),
		model:  cfg.Model,
		log:    logger.WithScoring(log, config.ProviderOpenAI, cfg.Model),
	}
}

func (s *OpenRouterService) Provider() string { return config.ProviderOpenAI }
func (s *OpenRouterService) Model() string    { return s.model }

func (s *OpenRouterService) Score(ctx context.Context, input domain.ScoringContext) (*domain.ScoringResult, error) {
	if s.apiKey == "" || s.client.BaseURL == "" {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY and OPENAI_BASE_URL are required", domain.ErrScoringServiceMisconfigured)
	}

	payload, err := s.buildPayload(input)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(s.apiKey).
		SetBody(payload).
		Post("/chat/completions")
	if err != nil {
		s.log.Error("scoring request failed", zap.Error(err))
		return nil, &domain.UpstreamError{Service: scoringServiceName, Body: err.Error(), Kind: domain.ErrScoringRequestFailed}
	}

	body := resp.String()
	if !resp.IsSuccess() {
		s.log.Error("scoring request rejected",
			zap.Int("status", resp.StatusCode()),
			zap.String("body", logger.TruncateForLog(body, responseLogLimit)),
		)
		return nil, &domain.UpstreamError{
			Service:    scoringServiceName,
			StatusCode: resp.StatusCode(),
			Body:       body,
			Kind:       domain.ErrScoringRequestFailed,
		}
	}

	arguments, err := functionArguments(body)
	if err != nil {
		s.log.Warn("scoring response without report call", zap.String("body", logger.TruncateForLog(body, responseLogLimit)))
		return nil, err
	}
	if err := ValidateArguments(arguments); err != nil {
		return nil, err
	}

	result := NormalizeReport(arguments)
	result.Provider = config.ProviderOpenAI
	result.Model = s.model
	if m := gjson.Get(body, "model").String(); m != "" {
		result.Model = m
	}
	s.log.Debug("scoring completed", zap.Any("overall_score", result.OverallScore))
	return &result, nil
}

func (s *OpenRouterService) buildPayload(input domain.ScoringContext) (map[string]any, error) {
	userText, att, err := buildUserPrompt(input)
	if err != nil {
		return nil, err
	}

	content := []map[string]any{{"type": "text", "text": userText}}
	if att != nil {
		content = append(content, map[string]any{
			"type": "file",
			"file": map[string]any{
				"filename":  att.Filename,
				"file_data": "data:" + att.Mime + ";base64," + att.Base64,
			},
		})
	}

	return map[string]any{
		"model":       s.model,
		"temperature": 0.1,
		"messages": []map[string]any{
			{"role": "system", "content": systemInstruction},
			{"role": "user", "content": content},
		},
		"tools": []map[string]any{{
			"type": "function",
			"function": map[string]any{
				"name":        ReportFunctionName,
				"description": reportFunctionDescription,
				"parameters":  json.RawMessage(careerReportSchema),
			},
		}},
		"tool_choice": map[string]any{
			"type":     "function",
			"function": map[string]any{"name": ReportFunctionName},
		},
	}, nil
}

// functionArguments pulls the report call arguments out of a chat completion.
// Arguments normally arrive as a JSON string; some gateways send an object.
func functionArguments(body string) (string, error) {
	calls := gjson.Get(body, "choices.0.message.tool_calls")
	if !calls.IsArray() {
		return "", fmt.Errorf("%w: no tool call in response", domain.ErrScoringResponseInvalid)
	}

	var call gjson.Result
	calls.ForEach(func(_, c gjson.Result) bool {
		if c.Get("function.name").String() == ReportFunctionName {
			call = c
			return false
		}
		return true
	})
	if !call.Exists() {
		return "", fmt.Errorf("%w: %s was not called", domain.ErrScoringResponseInvalid, ReportFunctionName)
	}

	args := call.Get("function.arguments")
	switch {
	case args.Type == gjson.String:
		return args.Str, nil
	case args.IsObject():
		return args.Raw, nil
	default:
		return "", fmt.Errorf("%w: tool call has no arguments", domain.ErrScoringResponseInvalid)
	}
}
