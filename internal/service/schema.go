package service

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/fadilmartias/career-intel/internal/domain"
	"github.com/xeipuuv/gojsonschema"
)

// careerReportSchema is the function parameter schema sent to the model.
//
//go:embed schema/career_report.json
var careerReportSchema []byte

// argumentsSchema is looser than careerReportSchema. Out of range or mistyped
// values are repaired by NormalizeReport; only a non-object payload or one
// with none of the report fields is rejected.
const argumentsSchema = `{
  "type": "object",
  "anyOf": [
    {"required": ["overallScore"]},
    {"required": ["categoryScores"]},
    {"required": ["strengths"]},
    {"required": ["improvements"]},
    {"required": ["overallFeedback"]}
  ]
}`

var compiledArgumentsSchema = mustSchema(argumentsSchema)

func mustSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("compile arguments schema: %v", err))
	}
	return schema
}

// ValidateArguments checks that a function-call payload is a usable report.
func ValidateArguments(arguments string) error {
	if strings.TrimSpace(arguments) == "" {
		return fmt.Errorf("%w: empty function arguments", domain.ErrScoringResponseInvalid)
	}
	result, err := compiledArgumentsSchema.Validate(gojsonschema.NewStringLoader(arguments))
	if err != nil {
		return fmt.Errorf("%w: arguments are not JSON: %v", domain.ErrScoringResponseInvalid, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.Field()+": "+e.Description())
		}
		return fmt.Errorf("%w: %s", domain.ErrScoringResponseInvalid, strings.Join(msgs, "; "))
	}
	return nil
}
