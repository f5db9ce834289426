package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fadilmartias/career-intel/internal/config"
	"github.com/fadilmartias/career-intel/internal/domain"
	"github.com/fadilmartias/career-intel/internal/logger"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const reportStoreServiceName = "report_store"

type ReportStoreInterface interface {
	Fetch(ctx context.Context, candidateID uuid.UUID) (*domain.StoredReport, error)
	Upsert(ctx context.Context, candidateID uuid.UUID, result *domain.ScoringResult, meta domain.ReportMetadata) (*domain.StoredReport, error)
}

// RestReportStore reads and writes reports through a PostgREST style API.
// Writes merge on candidate_id so each identity keeps exactly one row.
type RestReportStore struct {
	client  *resty.Client
	baseURL string
	apiKey  string
	table   string
	now     func() time.Time
	log     *zap.Logger
}

func NewRestReportStore(cfg *config.ReportStoreConfig, log *zap.Logger) *RestReportStore {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	return &RestReportStore{
		client:  client,
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		table:   cfg.Table,
		now:     time.Now,
		log:     logger.OrNop(log).With(zap.String("table", cfg.Table)),
	}
}

func (s *RestReportStore) request(ctx context.Context) (*resty.Request, error) {
	if s.baseURL == "" || s.apiKey == "" || s.table == "" {
		return nil, fmt.Errorf("%w: REPORT_STORE_URL, REPORT_STORE_KEY and REPORT_STORE_TABLE are required", domain.ErrReportStoreMisconfigured)
	}
	return s.client.R().
		SetContext(ctx).
		SetHeader("apikey", s.apiKey).
		SetAuthToken(s.apiKey), nil
}

func (s *RestReportStore) path() string {
	return "/rest/v1/" + s.table
}

// Fetch returns the stored report for candidateID, or nil when none exists.
func (s *RestReportStore) Fetch(ctx context.Context, candidateID uuid.UUID) (*domain.StoredReport, error) {
	req, err := s.request(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := req.
		SetQueryParams(map[string]string{
			"select":       "*",
			"candidate_id": "eq." + candidateID.String(),
			"limit":        "1",
		}).
		Get(s.path())
	if err != nil {
		return nil, &domain.UpstreamError{Service: reportStoreServiceName, Body: err.Error(), Kind: domain.ErrReportStoreRequestFailed}
	}
	if !resp.IsSuccess() {
		return nil, s.rejected("fetch", resp)
	}

	row := firstRow(resp.String())
	if !row.Exists() {
		return nil, nil
	}
	return DecodeStoredReport(row), nil
}

// Upsert writes result for candidateID, replacing any existing row.
func (s *RestReportStore) Upsert(ctx context.Context, candidateID uuid.UUID, result *domain.ScoringResult, meta domain.ReportMetadata) (*domain.StoredReport, error) {
	req, err := s.request(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if meta.GeneratedAt.IsZero() {
		meta.GeneratedAt = now
	}
	row := map[string]any{
		"candidate_id":     candidateID.String(),
		"overall_score":    result.OverallScore,
		"category_scores":  result.CategoryScores,
		"strengths":        nonNil(result.Strengths),
		"improvements":     nonNil(result.Improvements),
		"overall_feedback": result.OverallFeedback,
		"raw_report": map[string]any{
			"overallScore":    result.OverallScore,
			"categoryScores":  result.CategoryScores,
			"strengths":       nonNil(result.Strengths),
			"improvements":    nonNil(result.Improvements),
			"overallFeedback": result.OverallFeedback,
			"metadata":        meta,
		},
		"generated_at": meta.GeneratedAt.UTC(),
		"updated_at":   now,
	}

	resp, err := req.
		SetQueryParam("on_conflict", "candidate_id").
		SetHeader("Prefer", "resolution=merge-duplicates,return=representation").
		SetBody([]map[string]any{row}).
		Post(s.path())
	if err != nil {
		return nil, &domain.UpstreamError{Service: reportStoreServiceName, Body: err.Error(), Kind: domain.ErrReportStoreRequestFailed}
	}
	if !resp.IsSuccess() {
		return nil, s.rejected("upsert", resp)
	}

	if stored := firstRow(resp.String()); stored.Exists() {
		return DecodeStoredReport(stored), nil
	}

	// Store answered without a representation; echo what was written.
	encoded, err := json.Marshal(row)
	if err != nil {
		return nil, fmt.Errorf("encode report row: %w", err)
	}
	return DecodeStoredReport(gjson.ParseBytes(encoded)), nil
}

func (s *RestReportStore) rejected(op string, resp *resty.Response) error {
	body := resp.String()
	s.log.Error("report store request rejected",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode()),
		zap.String("body", logger.TruncateForLog(body, responseLogLimit)),
	)
	return &domain.UpstreamError{
		Service:    reportStoreServiceName,
		StatusCode: resp.StatusCode(),
		Body:       body,
		Kind:       domain.ErrReportStoreRequestFailed,
	}
}

func firstRow(body string) gjson.Result {
	parsed := gjson.Parse(body)
	if parsed.IsArray() {
		return parsed.Get("0")
	}
	if parsed.IsObject() {
		return parsed
	}
	return gjson.Result{}
}

// DecodeStoredReport maps a store row into a StoredReport. JSON columns may
// arrive either as native JSON or as strings holding JSON.
func DecodeStoredReport(row gjson.Result) *domain.StoredReport {
	raw := jsonColumn(row.Get("raw_report"))
	categories := jsonColumn(row.Get("category_scores"))
	if !categories.Exists() {
		categories = raw.Get("categoryScores")
	}

	report := &domain.StoredReport{
		OverallScore: NormalizeScore(row.Get("overall_score")),
		CategoryScores: domain.CategoryScores{
			TechnicalSkills:  normalizeCategory(firstOf(categories, categoryPaths.technicalSkills)),
			Experience:       normalizeCategory(firstOf(categories, categoryPaths.experience)),
			CulturalFit:      normalizeCategory(firstOf(categories, categoryPaths.culturalFit)),
			ProjectAlignment: normalizeCategory(firstOf(categories, categoryPaths.projectAlignment)),
		},
		Strengths:       CleanStrings(jsonColumn(row.Get("strengths"))),
		Improvements:    CleanStrings(jsonColumn(row.Get("improvements"))),
		OverallFeedback: textOf(row.Get("overall_feedback")),
		InputHash:       raw.Get("metadata.input_hash").String(),
		GeneratedAt:     parseTime(row.Get("generated_at")),
		CreatedAt:       parseTime(row.Get("created_at")),
		UpdatedAt:       parseTime(row.Get("updated_at")),
	}
	if id, err := uuid.Parse(row.Get("candidate_id").String()); err == nil {
		report.CandidateID = id
	}
	if report.InputHash == "" {
		report.InputHash = row.Get("input_hash").String()
	}
	if report.GeneratedAt == nil {
		report.GeneratedAt = parseTime(raw.Get("metadata.generated_at"))
	}
	if raw.IsObject() {
		var m map[string]any
		if err := json.Unmarshal([]byte(raw.Raw), &m); err == nil {
			report.RawReport = m
		}
	}
	return report
}

func jsonColumn(v gjson.Result) gjson.Result {
	if v.Type == gjson.String && gjson.Valid(v.Str) {
		return gjson.Parse(v.Str)
	}
	return v
}

func parseTime(v gjson.Result) *time.Time {
	if v.Type != gjson.String || v.Str == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02 15:04:05.999999-07"} {
		if t, err := time.Parse(layout, v.Str); err == nil {
			return &t
		}
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
