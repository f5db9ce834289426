package service

import (
	"math"
	"strconv"
	"strings"

	"github.com/fadilmartias/career-intel/internal/domain"
	"github.com/tidwall/gjson"
)

// categoryPaths lists the accepted keys per category, preferred key first.
var categoryPaths = struct {
	technicalSkills, experience, culturalFit, projectAlignment []string
}{
	technicalSkills:  []string{"technicalSkills", "technical_skills"},
	experience:       []string{"experience", "experienceRelevance", "experience_relevance"},
	culturalFit:      []string{"culturalFit", "cultural_fit"},
	projectAlignment: []string{"projectAlignment", "project_alignment"},
}

// NormalizeReport converts raw function-call arguments into a ScoringResult.
// Missing categories default to a null score with empty feedback.
func NormalizeReport(arguments string) domain.ScoringResult {
	args := gjson.Parse(arguments)
	categories := args.Get("categoryScores")

	return domain.ScoringResult{
		OverallScore: NormalizeScore(args.Get("overallScore")),
		CategoryScores: domain.CategoryScores{
			TechnicalSkills:  normalizeCategory(firstOf(categories, categoryPaths.technicalSkills)),
			Experience:       normalizeCategory(firstOf(categories, categoryPaths.experience)),
			CulturalFit:      normalizeCategory(firstOf(categories, categoryPaths.culturalFit)),
			ProjectAlignment: normalizeCategory(firstOf(categories, categoryPaths.projectAlignment)),
		},
		Strengths:       CleanStrings(args.Get("strengths")),
		Improvements:    CleanStrings(args.Get("improvements")),
		OverallFeedback: textOf(args.Get("overallFeedback")),
	}
}

// NormalizeScore clamps to [0,100] and rounds to two decimals. Numeric
// strings are accepted; anything else, or a non-finite value, is nil.
func NormalizeScore(v gjson.Result) *float64 {
	var f float64
	switch v.Type {
	case gjson.Number:
		f = v.Num
	case gjson.String:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}

	f = math.Max(0, math.Min(100, f))
	f = math.Round(f*100) / 100
	return &f
}

// CleanStrings keeps string entries only, collapsing whitespace and dropping empties.
func CleanStrings(v gjson.Result) []string {
	out := []string{}
	if !v.IsArray() {
		return out
	}
	v.ForEach(func(_, item gjson.Result) bool {
		if item.Type != gjson.String {
			return true
		}
		if s := strings.Join(strings.Fields(item.Str), " "); s != "" {
			out = append(out, s)
		}
		return true
	})
	return out
}

func normalizeCategory(v gjson.Result) domain.CategoryScore {
	if v.IsObject() {
		return domain.CategoryScore{
			Score:    NormalizeScore(v.Get("score")),
			Feedback: textOf(v.Get("feedback")),
		}
	}
	// A bare number is taken as the score.
	return domain.CategoryScore{Score: NormalizeScore(v)}
}

func firstOf(obj gjson.Result, keys []string) gjson.Result {
	if !obj.IsObject() {
		return gjson.Result{}
	}
	for _, key := range keys {
		if r := obj.Get(key); r.Exists() {
			return r
		}
	}
	return gjson.Result{}
}

func textOf(v gjson.Result) string {
	if v.Type != gjson.String {
		return ""
	}
	return strings.TrimSpace(v.Str)
}
