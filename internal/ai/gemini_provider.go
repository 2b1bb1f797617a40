package ai

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"talentlens/internal/config"
	tlerrors "talentlens/internal/errors"
	"talentlens/internal/types"

	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/genai"
)

// GeminiProvider implements Provider for Google Gemini
type GeminiProvider struct {
	client         *genai.Client
	generator      contentGenerator
	httpClient     *http.Client
	config         *config.StageAIConfig
	circuitBreaker *AICircuitBreaker
	modelBreaker   *ModelCircuitBreaker
	logger         *tlerrors.Logger
}

// Ensure GeminiProvider implements Provider
var _ Provider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a new Gemini provider instance for a specific stage
func NewGeminiProvider(cfg *config.StageAIConfig, stageName string, logger *tlerrors.Logger) (*GeminiProvider, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, tlerrors.NewAIError(tlerrors.ErrCodeModelUnavailable,
			"Failed to create Gemini client", err)
	}

	// Initialize circuit breakers with stage-specific configuration
	circuitBreaker := NewAICircuitBreaker(stageName, cfg, logger)
	modelBreaker := NewModelCircuitBreaker(stageName, cfg, logger)

	return &GeminiProvider{
		client:    client,
		generator: client.Models,
		httpClient: &http.Client{
			Timeout: *cfg.Timeout,
		},
		config:         cfg,
		circuitBreaker: circuitBreaker,
		modelBreaker:   modelBreaker,
		logger:         logger,
	}, nil
}

// ModelInfo represents information about the AI model
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}

// GetModelInfo checks the readiness and availability of the configured model
func (g *GeminiProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	modelInfo := &ModelInfo{
		Name:      g.config.Model,
		Available: false,
	}

	checkCtx, cancel := context.WithTimeout(ctx, modelCheckTimeout)
	defer cancel()

	model, err := g.modelBreaker.ExecuteModel(func() (*genai.Model, error) {
		return g.client.Models.Get(checkCtx, g.config.Model, &genai.GetModelConfig{})
	})
	if err != nil {
		modelInfo.Error = fmt.Sprintf("Failed to get model info: %v", err)

		g.logger.Warn("Model availability check failed",
			"model", g.config.Model,
			"provider", g.config.Provider,
			"error", err.Error())
		return modelInfo
	}

	modelInfo.Available = true
	if model.DisplayName != "" {
		modelInfo.DisplayName = model.DisplayName
	}
	if model.Version != "" {
		modelInfo.Version = model.Version
	}

	g.logger.Debug("Model availability check successful",
		"model", g.config.Model,
		"provider", g.config.Provider,
		"display_name", modelInfo.DisplayName,
		"version", modelInfo.Version)

	return modelInfo
}

const modelCheckTimeout = 10 * time.Second

// ParseResume extracts structured candidate fields from raw resume text.
// Fields absent from the text come back as the explicit "Not found" marker.
func (g *GeminiProvider) ParseResume(ctx context.Context, input types.ParseResumeInput) (types.ParseResumeOutput, *TokenUsage, error) {
	if err := validateStageInput("parse", map[string]string{"resumeText": input.ResumeText}); err != nil {
		return types.ParseResumeOutput{}, nil, err
	}

	systemPrompt := g.getSystemPrompt("parse")
	userPrompt := renderTemplate(g.getUserPrompt("parse"), map[string]string{
		"resumeText": input.ResumeText,
	})

	return invokeStage(
		g,
		ctx,
		"parse_resume",
		userPrompt,
		systemPrompt,
		g.buildParseSchema(),
		validateParseOutput,
		attribute.Int("input.resume_length", len(input.ResumeText)),
	)
}

// DiscoverProfile summarizes a candidate's likely online presence from
// name and email alone. No third-party lookup is performed.
func (g *GeminiProvider) DiscoverProfile(ctx context.Context, input types.DiscoverProfileInput) (types.DiscoverProfileOutput, *TokenUsage, error) {
	if err := validateStageInput("discover", map[string]string{
		"name":  input.Name,
		"email": input.Email,
	}); err != nil {
		return types.DiscoverProfileOutput{}, nil, err
	}

	systemPrompt := g.getSystemPrompt("discover")
	userPrompt := renderTemplate(g.getUserPrompt("discover"), map[string]string{
		"name":  input.Name,
		"email": input.Email,
	})

	return invokeStage(
		g,
		ctx,
		"discover_profile",
		userPrompt,
		systemPrompt,
		g.buildDiscoverSchema(),
		validateDiscoverOutput,
	)
}

// DetectFlags looks for inconsistencies between the resume text and the
// discovery summary. Ambiguous evidence is reported with flagged=false.
func (g *GeminiProvider) DetectFlags(ctx context.Context, input types.DetectFlagsInput) (types.DetectFlagsOutput, *TokenUsage, error) {
	if err := validateStageInput("flag", map[string]string{
		"resumeText":       input.ResumeText,
		"discoverySummary": input.DiscoverySummary,
	}); err != nil {
		return types.DetectFlagsOutput{}, nil, err
	}

	systemPrompt := g.getSystemPrompt("flag")
	userPrompt := renderTemplate(g.getUserPrompt("flag"), map[string]string{
		"resumeText":       input.ResumeText,
		"discoverySummary": input.DiscoverySummary,
	})

	return invokeStage(
		g,
		ctx,
		"detect_flags",
		userPrompt,
		systemPrompt,
		g.buildFlagSchema(),
		validateFlagOutput,
		attribute.Int("input.resume_length", len(input.ResumeText)),
	)
}

// MatchRole scores a resume against a job description. Scores outside
// [0, 100] are rejected as schema violations, never clamped.
func (g *GeminiProvider) MatchRole(ctx context.Context, input types.MatchRoleInput) (types.MatchRoleOutput, *TokenUsage, error) {
	if err := validateStageInput("match", map[string]string{
		"resumeText":     input.ResumeText,
		"jobDescription": input.JobDescription,
	}); err != nil {
		return types.MatchRoleOutput{}, nil, err
	}

	systemPrompt := g.getSystemPrompt("match")
	userPrompt := renderTemplate(g.getUserPrompt("match"), map[string]string{
		"resumeText":     input.ResumeText,
		"jobDescription": input.JobDescription,
	})

	output, usage, err := invokeStage(
		g,
		ctx,
		"match_role",
		userPrompt,
		systemPrompt,
		g.buildMatchSchema(),
		validateMatchOutput,
		attribute.Int("input.resume_length", len(input.ResumeText)),
		attribute.Int("input.job_length", len(input.JobDescription)),
	)
	if err != nil {
		return types.MatchRoleOutput{}, nil, err
	}

	return output, usage, nil
}

// GetCircuitBreakerStats returns circuit breaker statistics
func (g *GeminiProvider) GetCircuitBreakerStats() map[string]any {
	stats := map[string]any{
		"ai_operations":    g.circuitBreaker.GetStats(),
		"model_operations": g.modelBreaker.GetModelStats(),
	}

	// Overall health - both breakers must be healthy
	aiHealthy := g.circuitBreaker.IsHealthy()
	modelHealthy := g.modelBreaker.IsModelHealthy()
	stats["overall_healthy"] = aiHealthy && modelHealthy

	return stats
}

// Close implements Provider interface
func (g *GeminiProvider) Close() error {
	// Gemini client doesn't have a Close method in current single-shot usage
	return nil
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// extractTokenUsage extracts token usage information from Gemini API response
func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}

// getSystemPrompt returns the appropriate system prompt
func (g *GeminiProvider) getSystemPrompt(stageName string) string {
	loadedPrompts := config.GetPromptsForStage(stageName)
	configPrompts := &g.config.CustomPrompts.SystemPrompts

	switch stageName {
	case "parse":
		return resolvePrompt(
			loadedPrompts.SystemPrompts.ParseResume,
			configPrompts.ParseResume,
			DefaultSystemPrompts.ParseResume,
		)
	case "discover":
		return resolvePrompt(
			loadedPrompts.SystemPrompts.DiscoverProfile,
			configPrompts.DiscoverProfile,
			DefaultSystemPrompts.DiscoverProfile,
		)
	case "flag":
		return resolvePrompt(
			loadedPrompts.SystemPrompts.DetectFlags,
			configPrompts.DetectFlags,
			DefaultSystemPrompts.DetectFlags,
		)
	case "match":
		return resolvePrompt(
			loadedPrompts.SystemPrompts.MatchRole,
			configPrompts.MatchRole,
			DefaultSystemPrompts.MatchRole,
		)
	default:
		return ""
	}
}

// getUserPrompt returns the appropriate user prompt template
func (g *GeminiProvider) getUserPrompt(stageName string) string {
	loadedPrompts := config.GetPromptsForStage(stageName)
	configPrompts := &g.config.CustomPrompts.UserPrompts

	switch stageName {
	case "parse":
		return resolvePrompt(
			loadedPrompts.UserPrompts.ParseResume,
			configPrompts.ParseResume,
			DefaultUserPrompts.ParseResume,
		)
	case "discover":
		return resolvePrompt(
			loadedPrompts.UserPrompts.DiscoverProfile,
			configPrompts.DiscoverProfile,
			DefaultUserPrompts.DiscoverProfile,
		)
	case "flag":
		return resolvePrompt(
			loadedPrompts.UserPrompts.DetectFlags,
			configPrompts.DetectFlags,
			DefaultUserPrompts.DetectFlags,
		)
	case "match":
		return resolvePrompt(
			loadedPrompts.UserPrompts.MatchRole,
			configPrompts.MatchRole,
			DefaultUserPrompts.MatchRole,
		)
	default:
		return ""
	}
}

// resolvePrompt selects the correct prompt string based on a clear priority order:
// 1. A prompt loaded from a file.
// 2. A prompt defined directly in the configuration.
// 3. A hardcoded default prompt.
func resolvePrompt(loadedFromFile, fromConfig, fromDefault string) string {
	if loadedFromFile != "" {
		return loadedFromFile
	}
	if fromConfig != "" {
		return fromConfig
	}
	return fromDefault
}
