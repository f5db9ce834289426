package service

import (
	"errors"
	"testing"

	"github.com/fadilmartias/career-intel/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestNormalizeScore(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want *float64
	}{
		{"in range", `72.456`, ptr(72.46)},
		{"above range", `150`, ptr(100)},
		{"below range", `-3`, ptr(0)},
		{"numeric string", `"88.5"`, ptr(88.5)},
		{"padded string", `" 40 "`, ptr(40)},
		{"word", `"high"`, nil},
		{"null", `null`, nil},
		{"bool", `true`, nil},
		{"object", `{"score":1}`, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeScore(gjson.Parse(tc.in))
			if tc.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tc.want, *got, 1e-9)
		})
	}
}

func TestCleanStrings(t *testing.T) {
	got := CleanStrings(gjson.Parse(`["  Go  expert ", 42, "", "   ", null, "Led\n\tteams", {"a":1}]`))
	assert.Equal(t, []string{"Go expert", "Led teams"}, got)

	assert.Equal(t, []string{}, CleanStrings(gjson.Parse(`"not a list"`)))
	assert.Equal(t, []string{}, CleanStrings(gjson.Result{}))
}

func TestNormalizeReport(t *testing.T) {
	args := `{
		"overallScore": "81.234",
		"categoryScores": {
			"technicalSkills": {"score": 90, "feedback": " Strong Go "},
			"experience_relevance": {"score": 120, "feedback": "Senior"},
			"culturalFit": 55,
			"project_alignment": {"score": "n/a"}
		},
		"strengths": ["Go", 3, "  APIs "],
		"improvements": "none",
		"overallFeedback": "  Good fit.  "
	}`

	got := NormalizeReport(args)

	require.NotNil(t, got.OverallScore)
	assert.Equal(t, 81.23, *got.OverallScore)
	assert.Equal(t, 90.0, *got.CategoryScores.TechnicalSkills.Score)
	assert.Equal(t, "Strong Go", got.CategoryScores.TechnicalSkills.Feedback)
	assert.Equal(t, 100.0, *got.CategoryScores.Experience.Score)
	assert.Equal(t, 55.0, *got.CategoryScores.CulturalFit.Score)
	assert.Empty(t, got.CategoryScores.CulturalFit.Feedback)
	assert.Nil(t, got.CategoryScores.ProjectAlignment.Score)
	assert.Equal(t, []string{"Go", "APIs"}, got.Strengths)
	assert.Equal(t, []string{}, got.Improvements)
	assert.Equal(t, "Good fit.", got.OverallFeedback)
}

func TestNormalizeReportMissingCategories(t *testing.T) {
	got := NormalizeReport(`{"overallScore": 10}`)

	for _, c := range []domain.CategoryScore{
		got.CategoryScores.TechnicalSkills,
		got.CategoryScores.Experience,
		got.CategoryScores.CulturalFit,
		got.CategoryScores.ProjectAlignment,
	} {
		assert.Nil(t, c.Score)
		assert.Empty(t, c.Feedback)
	}
	assert.NotNil(t, got.Strengths)
	assert.NotNil(t, got.Improvements)
}

func TestValidateArguments(t *testing.T) {
	assert.NoError(t, ValidateArguments(`{"overallScore": 400}`))
	assert.NoError(t, ValidateArguments(`{"overallFeedback": "ok", "extra": true}`))

	for _, bad := range []string{``, `  `, `[]`, `"text"`, `{}`, `{"unrelated": 1}`, `{not json`} {
		err := ValidateArguments(bad)
		assert.Truef(t, errors.Is(err, domain.ErrScoringResponseInvalid), "input %q: %v", bad, err)
	}
}

func TestCareerReportSchemaIsValidJSON(t *testing.T) {
	require.True(t, gjson.ValidBytes(careerReportSchema))
	schema := gjson.ParseBytes(careerReportSchema)
	assert.Equal(t, "object", schema.Get("type").String())
	assert.Len(t, schema.Get("required").Array(), 5)
	assert.Equal(t, 100.0, schema.Get("properties.categoryScores.properties.culturalFit.properties.score.maximum").Float())
}

func ptr(f float64) *float64 { return &f }
