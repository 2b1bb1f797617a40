package ai

import (
	"fmt"
	"strings"

	"talentlens/internal/errors"
	"talentlens/internal/types"

	"google.golang.org/genai"
)

// Response schemas declare the exact shape each stage's output must take.
// The genai schema enforces presence and primitive types on the model side;
// the validate* functions re-check the decoded output locally so a
// nonconforming response is always surfaced as a SCHEMA_VIOLATION.

// buildParseSchema creates the schema for resume parse requests
func (g *GeminiProvider) buildParseSchema() *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"name":           {Type: genai.TypeString},
				"email":          {Type: genai.TypeString},
				"phone":          {Type: genai.TypeString},
				"education":      {Type: genai.TypeString},
				"experience":     {Type: genai.TypeString},
				"skills":         {Type: genai.TypeString},
				"certifications": {Type: genai.TypeString},
			},
			Required: []string{"name", "email", "phone", "education", "experience", "skills", "certifications"},
		},
	}

	g.applyTemperature(config)
	return config
}

// buildDiscoverSchema creates the schema for profile discovery requests
func (g *GeminiProvider) buildDiscoverSchema() *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"summary": {Type: genai.TypeString},
			},
			Required: []string{"summary"},
		},
	}

	g.applyTemperature(config)
	return config
}

// buildFlagSchema creates the schema for red-flag detection requests
func (g *GeminiProvider) buildFlagSchema() *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"inconsistencies": {Type: genai.TypeString},
				"flagged":         {Type: genai.TypeBoolean},
			},
			Required: []string{"inconsistencies", "flagged"},
		},
	}

	g.applyTemperature(config)
	return config
}

// buildMatchSchema creates the schema for role match requests
func (g *GeminiProvider) buildMatchSchema() *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"fitmentScore":  {Type: genai.TypeInteger},
				"justification": {Type: genai.TypeString},
			},
			Required: []string{"fitmentScore", "justification"},
		},
	}

	g.applyTemperature(config)
	return config
}

func (g *GeminiProvider) applyTemperature(config *genai.GenerateContentConfig) {
	if *g.config.Temperature > 0 {
		config.Temperature = g.config.Temperature
	}
}

// placeholderTokens are bare type names a model sometimes echoes back
// instead of real content. Any field holding one of these fails validation;
// the explicit "Not found" sentinel remains legal.
var placeholderTokens = map[string]struct{}{
	"string":  {},
	"text":    {},
	"number":  {},
	"integer": {},
	"boolean": {},
	"object":  {},
	"array":   {},
	"null":    {},
}

func isPlaceholderToken(value string) bool {
	_, ok := placeholderTokens[strings.ToLower(strings.TrimSpace(value))]
	return ok
}

func rejectPlaceholders(fields map[string]string) error {
	for name, value := range fields {
		if isPlaceholderToken(value) {
			return errors.NewAIError(errors.ErrCodeSchemaViolation,
				fmt.Sprintf("Field %q holds a literal placeholder token %q", name, strings.TrimSpace(value)), nil)
		}
	}
	return nil
}

func validateParseOutput(out types.ParseResumeOutput) error {
	fields := map[string]string{
		"name":           out.Name,
		"email":          out.Email,
		"phone":          out.Phone,
		"education":      out.Education,
		"experience":     out.Experience,
		"skills":         out.Skills,
		"certifications": out.Certifications,
	}
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			return errors.NewAIError(errors.ErrCodeSchemaViolation,
				fmt.Sprintf("Required field %q is empty; extraction must return %q when missing", name, types.NotFound), nil)
		}
	}
	return rejectPlaceholders(fields)
}

func validateDiscoverOutput(out types.DiscoverProfileOutput) error {
	if strings.TrimSpace(out.Summary) == "" {
		return errors.NewAIError(errors.ErrCodeSchemaViolation,
			"Required field \"summary\" is empty", nil)
	}
	return rejectPlaceholders(map[string]string{"summary": out.Summary})
}

func validateFlagOutput(out types.DetectFlagsOutput) error {
	return rejectPlaceholders(map[string]string{"inconsistencies": out.Inconsistencies})
}

func validateMatchOutput(out types.MatchRoleOutput) error {
	if out.FitmentScore < 0 || out.FitmentScore > 100 {
		return errors.NewAIError(errors.ErrCodeSchemaViolation,
			fmt.Sprintf("fitmentScore %d is outside [0, 100]", out.FitmentScore), nil)
	}
	return rejectPlaceholders(map[string]string{"justification": out.Justification})
}
