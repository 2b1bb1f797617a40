package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strings"

	tlerrors "talentlens/internal/errors"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

// invokeStage is the generic invoker shared by every pipeline stage: it
// sends the rendered prompt to the model exactly once, decodes the JSON
// payload into Out, and validates it against the stage's contract. There
// is no internal retry; retry policy belongs to the caller. Failures are
// always typed: MODEL_UNAVAILABLE when the call itself could not complete,
// EMPTY_RESPONSE when the call succeeded without a structured payload, and
// SCHEMA_VIOLATION when the payload fails decoding or validation.
func invokeStage[Out any](
	g *GeminiProvider,
	ctx context.Context,
	stageName string,
	userPrompt string,
	systemPrompt string,
	genaiConfig *genai.GenerateContentConfig,
	validate func(Out) error,
	spanAttributes ...attribute.KeyValue,
) (Out, *TokenUsage, error) {
	var output Out
	tracer := otel.Tracer("talentlens.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini."+stageName)
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", g.config.Model),
		attribute.Float64("ai.temperature", float64(*g.config.Temperature)),
	)
	span.SetAttributes(spanAttributes...)

	if *g.config.UseSystemPrompts && systemPrompt != "" {
		genaiConfig.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	callCtx, cancel := context.WithTimeout(ctx, *g.config.Timeout)
	defer cancel()

	result, err := g.circuitBreaker.Execute(func() (*genai.GenerateContentResponse, error) {
		return g.generator.GenerateContent(callCtx, g.config.Model, genai.Text(userPrompt), genaiConfig)
	})
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return output, nil, classifyCallError(stageName, err)
	}

	payload := strings.TrimSpace(result.Text())
	if payload == "" {
		span.SetAttributes(attribute.Bool("success", false))
		return output, nil, tlerrors.NewAIError(tlerrors.ErrCodeEmptyResponse,
			"Model returned no structured payload for "+stageName, nil).
			WithContext("stage", stageName)
	}

	if err := json.Unmarshal([]byte(payload), &output); err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return output, nil, tlerrors.NewAIError(tlerrors.ErrCodeSchemaViolation,
			"Model response for "+stageName+" is not valid JSON", err).
			WithContext("stage", stageName)
	}

	if validate != nil {
		if err := validate(output); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.Bool("success", false))
			var zero Out
			if appErr, ok := err.(*tlerrors.AppError); ok {
				return zero, nil, appErr.WithContext("stage", stageName)
			}
			return zero, nil, err
		}
	}

	tokenUsage := extractTokenUsage(result)
	if tokenUsage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", tokenUsage.InputTokens),
			attribute.Int64("ai.tokens.output", tokenUsage.OutputTokens),
			attribute.Int64("ai.tokens.total", tokenUsage.TotalTokens),
		)
	}

	span.SetAttributes(attribute.Bool("success", true))
	return output, tokenUsage, nil
}

// classifyCallError maps transport and breaker failures to MODEL_UNAVAILABLE.
func classifyCallError(stageName string, err error) error {
	appErr := tlerrors.NewAIError(tlerrors.ErrCodeModelUnavailable,
		"Model call for "+stageName+" could not complete", err).
		WithContext("stage", stageName)

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return appErr.WithContext("reason", "circuit_open")
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return appErr.WithContext("reason", "timeout")
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return appErr.WithContext("status", apiErr.Code)
	}

	return appErr
}

// renderTemplate substitutes named {{placeholders}} from the stage input.
func renderTemplate(template string, values map[string]string) string {
	replacements := make([]string, 0, len(values)*2)
	for name, value := range values {
		replacements = append(replacements, "{{"+name+"}}", value)
	}
	return strings.NewReplacer(replacements...).Replace(template)
}

// validateStageInput rejects empty stage inputs before any model call.
func validateStageInput(stageName string, fields map[string]string) error {
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			return tlerrors.NewValidationError(tlerrors.ErrCodeInvalidRequest,
				"Stage "+stageName+" requires a non-empty "+name, nil).
				WithContext("stage", stageName)
		}
	}
	return nil
}
