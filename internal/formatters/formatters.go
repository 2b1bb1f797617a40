package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"talentlens/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	// Register default formatters
	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "ParseResumeOutput", &ParseTextFormatter{})
	registry.RegisterFormatter("markdown", "ParseResumeOutput", &ParseMarkdownFormatter{})
	registry.RegisterFormatter("text", "DiscoverProfileOutput", &DiscoverTextFormatter{})
	registry.RegisterFormatter("markdown", "DiscoverProfileOutput", &DiscoverMarkdownFormatter{})
	registry.RegisterFormatter("text", "DetectFlagsOutput", &FlagTextFormatter{})
	registry.RegisterFormatter("markdown", "DetectFlagsOutput", &FlagMarkdownFormatter{})
	registry.RegisterFormatter("text", "MatchRoleOutput", &MatchTextFormatter{})
	registry.RegisterFormatter("markdown", "MatchRoleOutput", &MatchMarkdownFormatter{})
	registry.RegisterFormatter("text", "CandidateRecord", &CandidateTextFormatter{})
	registry.RegisterFormatter("markdown", "CandidateRecord", &CandidateMarkdownFormatter{})
	registry.RegisterFormatter("text", "CandidateRecordList", &CandidateListTextFormatter{})
	registry.RegisterFormatter("markdown", "CandidateRecordList", &CandidateListMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	// Try specific formatter first
	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.ParseResumeOutput:
		return "ParseResumeOutput"
	case types.DiscoverProfileOutput:
		return "DiscoverProfileOutput"
	case types.DetectFlagsOutput:
		return "DetectFlagsOutput"
	case types.MatchRoleOutput:
		return "MatchRoleOutput"
	case types.CandidateRecord, *types.CandidateRecord:
		return "CandidateRecord"
	case []*types.CandidateRecord:
		return "CandidateRecordList"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// ParseTextFormatter handles text formatting for parse results
type ParseTextFormatter struct{}

func (ptf *ParseTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.ParseResumeOutput)
	if !ok {
		return "", fmt.Errorf("expected ParseResumeOutput, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== EXTRACTED RESUME FIELDS ===\n\n")
	output.WriteString(fmt.Sprintf("Name:           %s\n", result.Name))
	output.WriteString(fmt.Sprintf("Email:          %s\n", result.Email))
	output.WriteString(fmt.Sprintf("Phone:          %s\n", result.Phone))
	output.WriteString("\nEducation:\n")
	output.WriteString(result.Education)
	output.WriteString("\n\nExperience:\n")
	output.WriteString(result.Experience)
	output.WriteString("\n\nSkills:\n")
	output.WriteString(result.Skills)
	output.WriteString("\n\nCertifications:\n")
	output.WriteString(result.Certifications)
	output.WriteString("\n")

	return output.String(), nil
}

func (ptf *ParseTextFormatter) SupportedType() string {
	return "ParseResumeOutput"
}

// ParseMarkdownFormatter handles markdown formatting for parse results
type ParseMarkdownFormatter struct{}

func (pmf *ParseMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.ParseResumeOutput)
	if !ok {
		return "", fmt.Errorf("expected ParseResumeOutput, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Extracted Resume Fields\n\n")
	output.WriteString(fmt.Sprintf("**Name:** %s\n\n", result.Name))
	output.WriteString(fmt.Sprintf("**Email:** %s\n\n", result.Email))
	output.WriteString(fmt.Sprintf("**Phone:** %s\n\n", result.Phone))
	output.WriteString("## Education\n")
	output.WriteString(result.Education)
	output.WriteString("\n\n## Experience\n")
	output.WriteString(result.Experience)
	output.WriteString("\n\n## Skills\n")
	output.WriteString(result.Skills)
	output.WriteString("\n\n## Certifications\n")
	output.WriteString(result.Certifications)
	output.WriteString("\n")

	return output.String(), nil
}

func (pmf *ParseMarkdownFormatter) SupportedType() string {
	return "ParseResumeOutput"
}

// DiscoverTextFormatter handles text formatting for discovery results
type DiscoverTextFormatter struct{}

func (dtf *DiscoverTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.DiscoverProfileOutput)
	if !ok {
		return "", fmt.Errorf("expected DiscoverProfileOutput, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== PROFILE DISCOVERY ===\n\n")
	output.WriteString(result.Summary)
	output.WriteString("\n\nNote: this summary is a model-generated impression, not verified data.\n")

	return output.String(), nil
}

func (dtf *DiscoverTextFormatter) SupportedType() string {
	return "DiscoverProfileOutput"
}

// DiscoverMarkdownFormatter handles markdown formatting for discovery results
type DiscoverMarkdownFormatter struct{}

func (dmf *DiscoverMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.DiscoverProfileOutput)
	if !ok {
		return "", fmt.Errorf("expected DiscoverProfileOutput, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Profile Discovery\n\n")
	output.WriteString(result.Summary)
	output.WriteString("\n\n> Note: this summary is a model-generated impression, not verified data.\n")

	return output.String(), nil
}

func (dmf *DiscoverMarkdownFormatter) SupportedType() string {
	return "DiscoverProfileOutput"
}

// FlagTextFormatter handles text formatting for red-flag results
type FlagTextFormatter struct{}

func (ftf *FlagTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.DetectFlagsOutput)
	if !ok {
		return "", fmt.Errorf("expected DetectFlagsOutput, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== RED-FLAG DETECTION ===\n\n")
	if result.Flagged {
		output.WriteString("Status: FLAGGED\n\n")
	} else {
		output.WriteString("Status: clear\n\n")
	}
	output.WriteString("Findings:\n")
	output.WriteString(result.Inconsistencies)
	output.WriteString("\n")

	return output.String(), nil
}

func (ftf *FlagTextFormatter) SupportedType() string {
	return "DetectFlagsOutput"
}

// FlagMarkdownFormatter handles markdown formatting for red-flag results
type FlagMarkdownFormatter struct{}

func (fmf *FlagMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.DetectFlagsOutput)
	if !ok {
		return "", fmt.Errorf("expected DetectFlagsOutput, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Red-Flag Detection\n\n")
	if result.Flagged {
		output.WriteString("**Status:** FLAGGED\n\n")
	} else {
		output.WriteString("**Status:** clear\n\n")
	}
	output.WriteString("## Findings\n\n")
	output.WriteString(result.Inconsistencies)
	output.WriteString("\n")

	return output.String(), nil
}

func (fmf *FlagMarkdownFormatter) SupportedType() string {
	return "DetectFlagsOutput"
}

// MatchTextFormatter handles text formatting for role match results
type MatchTextFormatter struct{}

func (mtf *MatchTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.MatchRoleOutput)
	if !ok {
		return "", fmt.Errorf("expected MatchRoleOutput, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== ROLE MATCH ===\n\n")
	output.WriteString(fmt.Sprintf("Fitment Score: %d/100\n\n", result.FitmentScore))
	output.WriteString("Justification:\n")
	output.WriteString(result.Justification)
	output.WriteString("\n")

	return output.String(), nil
}

func (mtf *MatchTextFormatter) SupportedType() string {
	return "MatchRoleOutput"
}

// MatchMarkdownFormatter handles markdown formatting for role match results
type MatchMarkdownFormatter struct{}

func (mmf *MatchMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.MatchRoleOutput)
	if !ok {
		return "", fmt.Errorf("expected MatchRoleOutput, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Role Match\n\n")
	output.WriteString(fmt.Sprintf("**Fitment Score:** %d/100\n\n", result.FitmentScore))
	output.WriteString("## Justification\n\n")
	output.WriteString(result.Justification)
	output.WriteString("\n")

	return output.String(), nil
}

func (mmf *MatchMarkdownFormatter) SupportedType() string {
	return "MatchRoleOutput"
}

func candidateRecord(data any) (types.CandidateRecord, bool) {
	switch v := data.(type) {
	case types.CandidateRecord:
		return v, true
	case *types.CandidateRecord:
		return *v, true
	}
	return types.CandidateRecord{}, false
}

// CandidateTextFormatter handles text formatting for candidate records
type CandidateTextFormatter struct{}

func (ctf *CandidateTextFormatter) Format(data any) (string, error) {
	record, ok := candidateRecord(data)
	if !ok {
		return "", fmt.Errorf("expected CandidateRecord, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== CANDIDATE RECORD ===\n\n")
	output.WriteString(fmt.Sprintf("ID:        %s\n", record.ID))
	if record.ExternalUID != "" {
		output.WriteString(fmt.Sprintf("UID:       %s\n", record.ExternalUID))
	}
	output.WriteString(fmt.Sprintf("Name:      %s\n", record.Name))
	output.WriteString(fmt.Sprintf("Email:     %s\n", record.Email))
	output.WriteString(fmt.Sprintf("Role:      %s\n", record.Role))
	output.WriteString(fmt.Sprintf("Top Skill: %s\n", record.TopSkill))

	if record.FitScore != nil {
		output.WriteString(fmt.Sprintf("\nFit Score: %d/100\n", *record.FitScore))
		if record.FitJustification != nil {
			output.WriteString(*record.FitJustification)
			output.WriteString("\n")
		}
	}
	if record.DiscoverySummary != nil {
		output.WriteString("\nDiscovery Summary:\n")
		output.WriteString(*record.DiscoverySummary)
		output.WriteString("\n")
	}
	if record.Flagged != nil {
		if *record.Flagged {
			output.WriteString("\nRed Flags: FLAGGED\n")
		} else {
			output.WriteString("\nRed Flags: clear\n")
		}
		if record.FlagSummary != nil {
			output.WriteString(*record.FlagSummary)
			output.WriteString("\n")
		}
	}

	output.WriteString("\nResume:\n")
	output.WriteString(record.ResumeTextContent)
	output.WriteString("\n")

	return output.String(), nil
}

func (ctf *CandidateTextFormatter) SupportedType() string {
	return "CandidateRecord"
}

// CandidateMarkdownFormatter handles markdown formatting for candidate records
type CandidateMarkdownFormatter struct{}

func (cmf *CandidateMarkdownFormatter) Format(data any) (string, error) {
	record, ok := candidateRecord(data)
	if !ok {
		return "", fmt.Errorf("expected CandidateRecord, got %T", data)
	}

	var output strings.Builder

	output.WriteString(fmt.Sprintf("# Candidate: %s\n\n", record.Name))
	output.WriteString(fmt.Sprintf("**ID:** %s\n\n", record.ID))
	if record.ExternalUID != "" {
		output.WriteString(fmt.Sprintf("**UID:** %s\n\n", record.ExternalUID))
	}
	output.WriteString(fmt.Sprintf("**Email:** %s\n\n", record.Email))
	output.WriteString(fmt.Sprintf("**Role:** %s\n\n", record.Role))
	output.WriteString(fmt.Sprintf("**Top Skill:** %s\n\n", record.TopSkill))

	if record.FitScore != nil {
		output.WriteString(fmt.Sprintf("## Fit Score: %d/100\n\n", *record.FitScore))
		if record.FitJustification != nil {
			output.WriteString(*record.FitJustification)
			output.WriteString("\n\n")
		}
	}
	if record.DiscoverySummary != nil {
		output.WriteString("## Discovery Summary\n\n")
		output.WriteString(*record.DiscoverySummary)
		output.WriteString("\n\n")
	}
	if record.Flagged != nil {
		output.WriteString("## Red Flags\n\n")
		if *record.Flagged {
			output.WriteString("**Status:** FLAGGED\n\n")
		} else {
			output.WriteString("**Status:** clear\n\n")
		}
		if record.FlagSummary != nil {
			output.WriteString(*record.FlagSummary)
			output.WriteString("\n\n")
		}
	}

	output.WriteString("## Resume\n\n")
	output.WriteString(record.ResumeTextContent)
	output.WriteString("\n")

	return output.String(), nil
}

func (cmf *CandidateMarkdownFormatter) SupportedType() string {
	return "CandidateRecord"
}

// CandidateListTextFormatter handles text formatting for record listings
type CandidateListTextFormatter struct{}

func (cltf *CandidateListTextFormatter) Format(data any) (string, error) {
	records, ok := data.([]*types.CandidateRecord)
	if !ok {
		return "", fmt.Errorf("expected []*CandidateRecord, got %T", data)
	}

	var output strings.Builder

	output.WriteString(fmt.Sprintf("=== CANDIDATE RECORDS (%d) ===\n\n", len(records)))
	for _, record := range records {
		output.WriteString(fmt.Sprintf("%s  %s <%s>", record.ID, record.Name, record.Email))
		if record.Role != "" {
			output.WriteString(fmt.Sprintf("  %s", record.Role))
		}
		if record.FitScore != nil {
			output.WriteString(fmt.Sprintf("  fit %d/100", *record.FitScore))
		}
		if record.Flagged != nil && *record.Flagged {
			output.WriteString("  FLAGGED")
		}
		output.WriteString("\n")
	}

	return output.String(), nil
}

func (cltf *CandidateListTextFormatter) SupportedType() string {
	return "CandidateRecordList"
}

// CandidateListMarkdownFormatter handles markdown formatting for record listings
type CandidateListMarkdownFormatter struct{}

func (clmf *CandidateListMarkdownFormatter) Format(data any) (string, error) {
	records, ok := data.([]*types.CandidateRecord)
	if !ok {
		return "", fmt.Errorf("expected []*CandidateRecord, got %T", data)
	}

	var output strings.Builder

	output.WriteString(fmt.Sprintf("# Candidate Records (%d)\n\n", len(records)))
	output.WriteString("| ID | Name | Email | Role | Fit | Flagged |\n")
	output.WriteString("| --- | --- | --- | --- | --- | --- |\n")
	for _, record := range records {
		fit := "-"
		if record.FitScore != nil {
			fit = fmt.Sprintf("%d/100", *record.FitScore)
		}
		flagged := "-"
		if record.Flagged != nil {
			if *record.Flagged {
				flagged = "yes"
			} else {
				flagged = "no"
			}
		}
		output.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s |\n",
			record.ID, record.Name, record.Email, record.Role, fit, flagged))
	}

	return output.String(), nil
}

func (clmf *CandidateListMarkdownFormatter) SupportedType() string {
	return "CandidateRecordList"
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
